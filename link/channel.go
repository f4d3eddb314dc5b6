package link

import (
	"encoding/binary"
	"io"
	"sync"

	"devlink-go/errcode"
	"devlink-go/x/conv"
)

// Diag receives the channel's own diagnostics. The link logger
// implements it, which makes the path circular on purpose: a parse
// fault is reported to the host over the same channel it arrived on.
// That is safe because diagnostics are only ever emitted outside the
// critical section.
type Diag interface {
	Warn(msg string)
	Error(msg string)
}

type nopDiag struct{}

func (nopDiag) Warn(string)  {}
func (nopDiag) Error(string) {}

// Channel owns the transport port and the handshake flag. Every port
// access happens under mu, the critical-section owner shared by the
// dispatch loop and any goroutine sending outbound traffic; the raw
// port never escapes. Holds are short: one poll, one field copy, or
// one whole outbound frame.
//
// ready starts false and is armed by HandshakeReply; it never drops
// back. While it is false SendCommand drops frames without writing a
// byte, which is the designed pre-handshake behavior rather than a
// fault.
type Channel struct {
	mu    sync.Mutex
	port  io.ReadWriter
	ready bool

	reg  *Registry
	diag Diag
}

// NewChannel wraps port, whose Read must be non-blocking: (0, nil)
// when nothing is buffered. Every transport.Port implementation
// honors that contract.
func NewChannel(port io.ReadWriter, reg *Registry) *Channel {
	return &Channel{port: port, reg: reg, diag: nopDiag{}}
}

// SetDiag routes the channel's diagnostics, normally to the link
// logger once it is bound. Call before the dispatch loop starts.
func (c *Channel) SetDiag(d Diag) {
	if d != nil {
		c.diag = d
	}
}

// Ready reports whether the handshake has completed.
func (c *Channel) Ready() bool {
	c.mu.Lock()
	r := c.ready
	c.mu.Unlock()
	return r
}

// HandshakeReply writes the device's ready frame and arms outbound
// traffic. Receiving further handshakes just re-sends the reply;
// ready stays true.
func (c *Channel) HandshakeReply() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.port.Write([]byte{byte(EvReady)}); err != nil {
		return &errcode.E{C: errcode.Transport, Op: "link.HandshakeReply", Err: err}
	}
	c.ready = true
	return nil
}

// SendCommand transmits a function-call frame carrying name and
// payload. Before the handshake the frame is silently dropped and no
// byte is written; callers that care can test for errcode.NotReady.
// The whole frame goes out under one lock hold, so concurrent senders
// never interleave mid-frame.
func (c *Channel) SendCommand(name string, payload []byte) error {
	frame, err := AppendCall(nil, name, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return errcode.NotReady
	}
	if _, err := c.port.Write(frame); err != nil {
		return &errcode.E{C: errcode.Transport, Op: "link.SendCommand", Err: err}
	}
	return nil
}

// SendReply transmits a function-return frame carrying exactly reply.
// Replies answer a received call, so they are not gated on ready.
func (c *Channel) SendReply(reply []byte) error {
	frame := AppendReturn(nil, reply)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.port.Write(frame); err != nil {
		return &errcode.E{C: errcode.Transport, Op: "link.SendReply", Err: err}
	}
	return nil
}

// lockedPort takes the channel lock for one read attempt at a time, so
// a multi-field frame read stays a sequence of short critical sections
// instead of one long one. Outbound frames (diagnostics included) can
// interleave between fields; they cannot corrupt the inbound byte
// stream because the two directions are independent.
type lockedPort struct{ c *Channel }

func (lp lockedPort) Read(p []byte) (int, error) {
	lp.c.mu.Lock()
	n, err := lp.c.port.Read(p)
	lp.c.mu.Unlock()
	return n, err
}

// ReadAndDispatch processes at most one inbound event and reports
// whether it consumed anything. An idle port yields (false, nil), so
// the main loop can nap between polls.
//
// Recoverable faults never escape: transport errors abandon the parse,
// protocol garbage is drained, unknown functions still get an empty
// reply. The one error callers see is errcode.Restarting, raised when
// a handler takes the terminal restart disposition; the loop must not
// dispatch again after that.
//
// A function-call frame is consumed with busy-retry reads and no
// timeout. A host that opens a frame and walks away stalls the loop
// here; that single-consumer trade-off is inherited from the protocol
// design (see DESIGN.md for the recorded decision).
func (c *Channel) ReadAndDispatch() (bool, error) {
	var evb [1]byte
	c.mu.Lock()
	n, err := c.port.Read(evb[:])
	c.mu.Unlock()
	if err != nil {
		c.diag.Error("event read failed: " + err.Error())
		return false, nil
	}
	if n == 0 {
		return false, nil
	}

	switch Event(evb[0]) {
	case EvReady:
		if err := c.HandshakeReply(); err != nil {
			c.diag.Error("handshake reply failed: " + err.Error())
		}
		return true, nil
	case EvCall:
		return true, c.readCall()
	case EvEnd:
		// Stray end marker with no call in progress.
		return true, nil
	default:
		msg := make([]byte, 0, 32)
		msg = append(msg, "unrecognized event byte 0x"...)
		msg = conv.AppendByteHex(msg, evb[0])
		c.diag.Warn(string(msg))
		if _, derr := DrainAvailable(lockedPort{c}); derr != nil {
			c.diag.Error("resync drain failed: " + derr.Error())
		}
		return true, nil
	}
}

// readCall consumes the rest of a function-call frame and dispatches
// it. The header byte has already been read.
func (c *Channel) readCall() error {
	lp := lockedPort{c}

	var nameLen [1]byte
	if err := ReadExactBlocking(lp, nameLen[:]); err != nil {
		c.diag.Error("name length read failed: " + err.Error())
		return nil
	}
	name := make([]byte, nameLen[0])
	if err := ReadExactBlocking(lp, name); err != nil {
		c.diag.Error("name read failed: " + err.Error())
		return nil
	}
	var plen [2]byte
	if err := ReadExactBlocking(lp, plen[:]); err != nil {
		c.diag.Error("payload length read failed: " + err.Error())
		return nil
	}
	payload := make([]byte, binary.LittleEndian.Uint16(plen[:]))
	if err := ReadExactBlocking(lp, payload); err != nil {
		c.diag.Error("payload read failed: " + err.Error())
		return nil
	}
	// The end marker is consumed before dispatch, not validated.
	var end [1]byte
	if err := ReadExactBlocking(lp, end[:]); err != nil {
		c.diag.Error("end marker read failed: " + err.Error())
		return nil
	}

	h, ok := c.reg.Lookup(string(name))
	if !ok {
		c.diag.Warn("unknown function: " + string(name))
		if err := c.SendReply(nil); err != nil {
			c.diag.Error("empty reply write failed: " + err.Error())
		}
		return nil
	}

	reply, disp := h(payload)
	if disp == Restarting {
		// No reply: the device is going down.
		return errcode.Restarting
	}
	if err := c.SendReply(reply); err != nil {
		c.diag.Error("reply write failed: " + err.Error())
	}
	return nil
}
