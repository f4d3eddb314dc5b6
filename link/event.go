// Package link implements the framing and dispatch protocol the device
// speaks over its serial transport: a leading event byte, length-prefixed
// call frames, a ready handshake that gates outbound traffic, and a
// fixed command table the dispatch loop routes into.
package link

// Event is the leading byte that identifies every frame on the wire.
// All multi-byte integers that follow an event byte are little-endian.
type Event byte

const (
	// EvEnd closes a function-call frame.
	EvEnd Event = 0x00
	// EvReady is the handshake frame; it carries no payload.
	EvReady Event = 0x01
	// EvCall opens a function-call frame: name, payload, end marker.
	EvCall Event = 0x02
	// EvReturn opens a function-return frame: raw reply bytes, no
	// length prefix. The peer infers the boundary from the function it
	// invoked.
	EvReturn Event = 0x03
)

func (e Event) String() string {
	switch e {
	case EvEnd:
		return "end"
	case EvReady:
		return "ready"
	case EvCall:
		return "call"
	case EvReturn:
		return "return"
	}
	return "unknown"
}

// IsValid reports whether e is one of the assigned wire bytes.
func (e Event) IsValid() bool { return e <= EvReturn }
