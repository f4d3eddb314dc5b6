// Package heartbeat emits a periodic liveness beacon over the link so
// the host can tell a quiet device from a dead one.
package heartbeat

import (
	"context"
	"encoding/binary"
	"time"

	"devlink-go/errcode"
	"devlink-go/x/timex"
)

// Name is the reserved outbound function the beacon travels under.
const Name = "heartbeat"

// Sender is the outbound half of the link the service needs.
type Sender interface {
	SendCommand(name string, payload []byte) error
}

// Service sends one beacon per interval. The payload is a running
// sequence number followed by the device clock:
//
//	[seq:u16 LE][clock_ms:u32 LE]
type Service struct {
	Interval time.Duration
	seq      uint16
}

func (s *Service) serviceLoop(ctx context.Context, ch Sender) {
	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			if err := s.beat(ch); err != nil {
				println("Warn: heartbeat send failed:", err.Error())
			}
		}
	}
}

func (s *Service) beat(ch Sender) error {
	var p [6]byte
	binary.LittleEndian.PutUint16(p[0:2], s.seq)
	binary.LittleEndian.PutUint32(p[2:6], timex.Millis32())
	s.seq++

	err := ch.SendCommand(Name, p[:])
	if errcode.Of(err) == errcode.NotReady {
		// Beacons before the handshake are dropped, not faults.
		return nil
	}
	return err
}

// Start launches the beacon loop. A zero or negative interval disables
// the service.
func (s *Service) Start(ctx context.Context, ch Sender) error {
	if s.Interval <= 0 {
		println("Info: heartbeat service disabled")
		return nil
	}
	go s.serviceLoop(ctx, ch)
	return nil
}
