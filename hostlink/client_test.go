package hostlink

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"devlink-go/commands"
	"devlink-go/errcode"
	"devlink-go/hw"
	"devlink-go/link"
	"devlink-go/linklog"
	"devlink-go/transport"
)

// testDevice runs a real dispatch loop on the far end of a loopback
// pair, the same loop shape the firmware entrypoint uses.
type testDevice struct {
	ch        *link.Channel
	board     *hw.Device
	indicator *hw.FakeIndicator
	system    *hw.FakeSystem

	done      chan struct{}
	stopped   chan struct{}
	restarted chan struct{}

	mu      sync.Mutex
	loopErr error
}

func startDevice(t *testing.T, port transport.Port) *testDevice {
	t.Helper()

	ind := &hw.FakeIndicator{}
	board := &hw.Device{Indicator: ind, Clock: &hw.FakeClock{}, System: &hw.FakeSystem{}}
	reg, err := commands.NewTable(board)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	d := &testDevice{
		ch:        link.NewChannel(port, reg),
		board:     board,
		indicator: ind,
		system:    board.System.(*hw.FakeSystem),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		restarted: make(chan struct{}),
	}

	go func() {
		defer close(d.stopped)
		for {
			select {
			case <-d.done:
				return
			default:
			}
			did, err := d.ch.ReadAndDispatch()
			if errcode.Of(err) == errcode.Restarting {
				close(d.restarted)
				return
			}
			if err != nil {
				d.mu.Lock()
				d.loopErr = err
				d.mu.Unlock()
				return
			}
			if !did {
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()

	t.Cleanup(func() {
		close(d.done)
		<-d.stopped
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.loopErr != nil {
			t.Errorf("device loop error: %v", d.loopErr)
		}
	})
	return d
}

func waitInbound(t *testing.T, port transport.Port) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for port.Buffered() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no inbound bytes before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHandshakeThenPing(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	dev := startDevice(t, devEnd)
	c := New(hostEnd)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if c.Ready() {
		t.Fatal("ready before handshake")
	}
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if !c.Ready() {
		t.Fatal("not ready after handshake")
	}
	if !dev.ch.Ready() {
		t.Fatal("device not armed after handshake")
	}

	reply, err := c.Call(ctx, "ping", []byte{7, 8}, 2)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !bytes.Equal(reply, []byte{7, 8}) {
		t.Errorf("ping reply = %v, want [7 8]", reply)
	}
}

func TestCallServicesInterleavedLog(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	dev := startDevice(t, devEnd)

	var (
		mu   sync.Mutex
		logs []string
	)
	c := New(hostEnd, WithLogSink(func(level linklog.Level, msg string) {
		mu.Lock()
		logs = append(logs, level.Name()+" "+msg)
		mu.Unlock()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	// The record lands in the host's inbound buffer ahead of the next
	// reply, so Call must route it before it can finish.
	devLog := linklog.New(dev.ch, linklog.LevelDebug)
	devLog.Info("boot ok")
	waitInbound(t, hostEnd)

	reply, err := c.Call(ctx, "ping", []byte{1}, 1)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !bytes.Equal(reply, []byte{1}) {
		t.Errorf("reply = %v, want [1]", reply)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(logs) != 1 || logs[0] != "INFO boot ok" {
		t.Errorf("logs = %q, want [\"INFO boot ok\"]", logs)
	}
}

func TestHeartbeatRouted(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	dev := startDevice(t, devEnd)

	type beat struct {
		seq   uint16
		clock uint32
	}
	got := make(chan beat, 1)
	c := New(hostEnd, WithHeartbeatSink(func(seq uint16, clockMS uint32) {
		got <- beat{seq, clockMS}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	var p [6]byte
	binary.LittleEndian.PutUint16(p[0:2], 3)
	binary.LittleEndian.PutUint32(p[2:6], 1234)
	if err := dev.ch.SendCommand("heartbeat", p[:]); err != nil {
		t.Fatalf("send heartbeat: %v", err)
	}

	if err := c.ServiceOne(ctx); err != nil {
		t.Fatalf("ServiceOne: %v", err)
	}
	select {
	case b := <-got:
		if b.seq != 3 || b.clock != 1234 {
			t.Errorf("beat = %+v, want seq 3 clock 1234", b)
		}
	default:
		t.Fatal("heartbeat sink not called")
	}
}

func TestPanicRouted(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	dev := startDevice(t, devEnd)

	var panics []string
	c := New(hostEnd, WithPanicSink(func(msg string) { panics = append(panics, msg) }))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	if err := dev.ch.SendCommand("panic", []byte("queue overflow")); err != nil {
		t.Fatalf("send panic: %v", err)
	}
	if err := c.ServiceOne(ctx); err != nil {
		t.Fatalf("ServiceOne: %v", err)
	}
	if len(panics) != 1 || panics[0] != "queue overflow" {
		t.Errorf("panics = %q, want [\"queue overflow\"]", panics)
	}
}

func TestResetRestartsDevice(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	dev := startDevice(t, devEnd)
	c := New(hostEnd)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	if err := c.Send("reset", nil); err != nil {
		t.Fatalf("send reset: %v", err)
	}

	select {
	case <-dev.restarted:
	case <-time.After(2 * time.Second):
		t.Fatal("device did not reach restart")
	}
	if n := dev.system.Restarts(); n != 1 {
		t.Errorf("restarts = %d, want 1", n)
	}
	if n := hostEnd.Buffered(); n != 0 {
		t.Errorf("%d unexpected reply bytes after reset", n)
	}
}

func TestUnknownFunctionEmptyReply(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	startDevice(t, devEnd)
	c := New(hostEnd)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("handshake: %v", err)
	}

	reply, err := c.Call(ctx, "no_such_function", nil, 0)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if reply != nil {
		t.Errorf("reply = %v, want nil", reply)
	}
}

func TestCallHonorsContext(t *testing.T) {
	devEnd, hostEnd := transport.Loopback(256)
	_ = devEnd // no device: nothing will ever answer
	c := New(hostEnd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Call(ctx, "ping", nil, 1)
	if errcode.Of(err) != errcode.Transport {
		t.Fatalf("err = %v, want Transport from cancelled context", err)
	}
}
