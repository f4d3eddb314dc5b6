// Package hostlink is the host half of the link: it drives the ready
// handshake, invokes device functions and demultiplexes the diagnostic
// traffic the device interleaves on the same byte stream.
//
// The client is synchronous and single-owner: one goroutine opens the
// stream, handshakes, and issues calls. Inbound pseudo-calls that
// arrive while a reply is pending are routed to the configured sinks
// in arrival order.
package hostlink

import (
	"context"
	"encoding/binary"
	"io"
	"runtime"

	"devlink-go/errcode"
	"devlink-go/link"
	"devlink-go/linklog"
)

// Device-originated pseudo-call names. They share the function-call
// framing but never expect a return.
const (
	logName       = "log"
	heartbeatName = "heartbeat"
	panicName     = "panic"
)

// Config holds the client's sink callbacks. Nil sinks drop their
// traffic.
type Config struct {
	// OnLog receives decoded records from "log" pseudo-calls.
	OnLog func(level linklog.Level, msg string)

	// OnHeartbeat receives the beacon counter and the device clock in
	// milliseconds.
	OnHeartbeat func(seq uint16, clockMS uint32)

	// OnPanic receives the message of a device panic report. After a
	// panic the device halts until it is power-cycled or reset.
	OnPanic func(msg string)

	// OnCall receives any other device-originated call, payload
	// included.
	OnCall func(name string, payload []byte)
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithLogSink routes decoded device log records to fn.
func WithLogSink(fn func(level linklog.Level, msg string)) Option {
	return func(c *Config) { c.OnLog = fn }
}

// WithHeartbeatSink routes liveness beacons to fn.
func WithHeartbeatSink(fn func(seq uint16, clockMS uint32)) Option {
	return func(c *Config) { c.OnHeartbeat = fn }
}

// WithPanicSink routes device panic reports to fn.
func WithPanicSink(fn func(msg string)) Option {
	return func(c *Config) { c.OnPanic = fn }
}

// WithCallSink routes unrecognized device-originated calls to fn.
func WithCallSink(fn func(name string, payload []byte)) Option {
	return func(c *Config) { c.OnCall = fn }
}

// Client drives one device over a byte stream. Not safe for concurrent
// use: calls and event servicing must come from a single goroutine.
type Client struct {
	stream io.ReadWriter
	cfg    Config
	ready  bool
}

// New returns a client over stream. The stream's Read may block until
// a byte arrives or return (0, nil) when nothing is pending; both are
// handled. Context cancellation is only observed between reads, so a
// port configured with a read timeout gives the snappiest aborts.
func New(stream io.ReadWriter, opts ...Option) *Client {
	if stream == nil {
		panic("hostlink: nil stream")
	}
	c := &Client{stream: stream}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	return c
}

// Ready reports whether the handshake has completed.
func (c *Client) Ready() bool { return c.ready }

// Handshake sends the ready byte and services inbound events until the
// device echoes it. Until that echo the device drops all outbound
// traffic except replies, so this must run before anything that waits
// on logs or beacons.
func (c *Client) Handshake(ctx context.Context) error {
	const op = "hostlink.Handshake"
	if _, err := c.stream.Write([]byte{byte(link.EvReady)}); err != nil {
		return &errcode.E{C: errcode.Transport, Op: op, Err: err}
	}
	for {
		ev, err := c.readEvent(ctx)
		if err != nil {
			return err
		}
		switch ev {
		case link.EvReady:
			c.ready = true
			return nil
		case link.EvCall:
			if err := c.serviceCall(ctx); err != nil {
				return err
			}
		case link.EvEnd:
			// Stray end marker between frames.
		default:
			return &errcode.E{C: errcode.Protocol, Op: op,
				Msg: "unexpected event " + ev.String()}
		}
	}
}

// Call invokes a device function and returns its reply. replyLen must
// be the callee's fixed reply size; the return frame carries no length
// of its own. Functions the device does not recognize reply with zero
// bytes, so pass 0 when probing.
//
// Pseudo-calls that arrive before the return are serviced in order.
func (c *Client) Call(ctx context.Context, name string, payload []byte, replyLen int) ([]byte, error) {
	const op = "hostlink.Call"
	if err := c.Send(name, payload); err != nil {
		return nil, err
	}
	for {
		ev, err := c.readEvent(ctx)
		if err != nil {
			return nil, err
		}
		switch ev {
		case link.EvReturn:
			if replyLen == 0 {
				return nil, nil
			}
			reply := make([]byte, replyLen)
			if err := c.readExact(ctx, reply); err != nil {
				return nil, err
			}
			return reply, nil
		case link.EvCall:
			if err := c.serviceCall(ctx); err != nil {
				return nil, err
			}
		case link.EvReady, link.EvEnd:
			// Duplicate handshake echo or stray end marker.
		default:
			return nil, &errcode.E{C: errcode.Protocol, Op: op,
				Msg: "unexpected event " + ev.String()}
		}
	}
}

// Send writes a call frame without waiting for anything back. This is
// the right shape for reset, which restarts the device instead of
// replying.
func (c *Client) Send(name string, payload []byte) error {
	const op = "hostlink.Send"
	frame, err := link.AppendCall(nil, name, payload)
	if err != nil {
		return err
	}
	if _, err := c.stream.Write(frame); err != nil {
		return &errcode.E{C: errcode.Transport, Op: op, Err: err}
	}
	return nil
}

// ServiceOne blocks for the next inbound event and dispatches it. A
// return frame with no call pending is a protocol fault.
func (c *Client) ServiceOne(ctx context.Context) error {
	const op = "hostlink.ServiceOne"
	ev, err := c.readEvent(ctx)
	if err != nil {
		return err
	}
	switch ev {
	case link.EvCall:
		return c.serviceCall(ctx)
	case link.EvReady, link.EvEnd:
		return nil
	default:
		return &errcode.E{C: errcode.Protocol, Op: op,
			Msg: "unexpected event " + ev.String()}
	}
}

func (c *Client) readEvent(ctx context.Context) (link.Event, error) {
	var b [1]byte
	if err := c.readExact(ctx, b[:]); err != nil {
		return 0, err
	}
	return link.Event(b[0]), nil
}

// readExact fills buf, retrying empty polls until the context gives
// out. A read blocked inside the port itself is only interrupted by
// the port's own timeout.
func (c *Client) readExact(ctx context.Context, buf []byte) error {
	got := 0
	for got < len(buf) {
		if err := ctx.Err(); err != nil {
			return &errcode.E{C: errcode.Transport, Op: "hostlink.read", Err: err}
		}
		n, err := c.stream.Read(buf[got:])
		if err != nil {
			return &errcode.E{C: errcode.Transport, Op: "hostlink.read", Err: err}
		}
		if n == 0 {
			runtime.Gosched()
			continue
		}
		got += n
	}
	return nil
}

// serviceCall consumes one device-originated call frame, header byte
// already read, and routes it to the matching sink.
func (c *Client) serviceCall(ctx context.Context) error {
	const op = "hostlink.serviceCall"

	var nameLen [1]byte
	if err := c.readExact(ctx, nameLen[:]); err != nil {
		return err
	}
	name := make([]byte, nameLen[0])
	if err := c.readExact(ctx, name); err != nil {
		return err
	}
	var plen [2]byte
	if err := c.readExact(ctx, plen[:]); err != nil {
		return err
	}
	payload := make([]byte, binary.LittleEndian.Uint16(plen[:]))
	if err := c.readExact(ctx, payload); err != nil {
		return err
	}
	var end [1]byte
	if err := c.readExact(ctx, end[:]); err != nil {
		return err
	}

	switch string(name) {
	case logName:
		level, msg, err := linklog.ParseRecord(payload)
		if err != nil {
			return &errcode.E{C: errcode.Protocol, Op: op, Msg: "bad log record", Err: err}
		}
		if c.cfg.OnLog != nil {
			c.cfg.OnLog(linklog.ParseLevel(level), msg)
		}
	case heartbeatName:
		if len(payload) != 6 {
			return &errcode.E{C: errcode.Protocol, Op: op, Msg: "bad heartbeat payload"}
		}
		if c.cfg.OnHeartbeat != nil {
			seq := binary.LittleEndian.Uint16(payload[0:2])
			clock := binary.LittleEndian.Uint32(payload[2:6])
			c.cfg.OnHeartbeat(seq, clock)
		}
	case panicName:
		if c.cfg.OnPanic != nil {
			c.cfg.OnPanic(string(payload))
		}
	default:
		if c.cfg.OnCall != nil {
			c.cfg.OnCall(string(name), payload)
		}
	}
	return nil
}
