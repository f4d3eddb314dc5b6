package link

import (
	"encoding/binary"

	"devlink-go/errcode"
	"devlink-go/x/conv"
)

// Wire limits fixed by the frame header field widths.
const (
	// MaxNameLen is the widest function name the one-byte length field
	// can carry.
	MaxNameLen = 255
	// MaxPayloadLen is the widest payload the u16 length field can
	// carry.
	MaxPayloadLen = 65535
)

// AppendCall appends a complete function-call frame to dst and returns
// the extended slice:
//
//	[0x02][name_len:u8][name bytes][payload_len:u16 LE][payload bytes][0x00]
//
// Names must be 1..255 bytes and payloads at most 65535 bytes; anything
// else fails with errcode.InvalidParams and leaves dst unchanged.
func AppendCall(dst []byte, name string, payload []byte) ([]byte, error) {
	if len(name) == 0 || len(name) > MaxNameLen {
		return dst, &errcode.E{C: errcode.InvalidParams, Op: "link.AppendCall",
			Msg: "name length " + conv.Itoa(int64(len(name)))}
	}
	if len(payload) > MaxPayloadLen {
		return dst, &errcode.E{C: errcode.InvalidParams, Op: "link.AppendCall",
			Msg: "payload length " + conv.Itoa(int64(len(payload)))}
	}
	dst = append(dst, byte(EvCall), byte(len(name)))
	dst = append(dst, name...)
	var l [2]byte
	binary.LittleEndian.PutUint16(l[:], uint16(len(payload)))
	dst = append(dst, l[:]...)
	dst = append(dst, payload...)
	dst = append(dst, byte(EvEnd))
	return dst, nil
}

// AppendReturn appends a function-return frame to dst:
//
//	[0x03][reply bytes]
//
// There is no length prefix and no end marker; the reply is exactly the
// handler's output, zero bytes for void functions.
func AppendReturn(dst []byte, reply []byte) []byte {
	dst = append(dst, byte(EvReturn))
	return append(dst, reply...)
}
