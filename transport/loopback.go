package transport

import (
	"devlink-go/x/ring"
)

// Loopback returns two cross-wired in-memory ports. Bytes written on
// one side become readable on the other, in order. size is the
// per-direction buffer capacity and must be a power of two.
//
// The pair stands in for a physical serial link on host builds: tests
// and the host self-test drive one end while the firmware loop owns
// the other.
func Loopback(size int) (Port, Port) {
	ab := ring.New(size)
	ba := ring.New(size)
	return &loopPort{rx: ba, tx: ab}, &loopPort{rx: ab, tx: ba}
}

type loopPort struct {
	rx *ring.Ring
	tx *ring.Ring
}

func (p *loopPort) Read(b []byte) (int, error) {
	return p.rx.TryRead(b), nil
}

func (p *loopPort) Buffered() int { return p.rx.Len() }

// Write blocks until the peer has drained enough for every byte to be
// accepted.
func (p *loopPort) Write(b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n := p.tx.TryWrite(b[total:])
		total += n
		if n == 0 {
			<-p.tx.Writable()
		}
	}
	return total, nil
}
