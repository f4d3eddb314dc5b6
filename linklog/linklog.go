// Package linklog ships diagnostic records to the host as "log"
// pseudo-calls: ordinary function-call frames under the reserved name
// "log", sharing the transport with real command traffic.
package linklog

import (
	"encoding/binary"
	"strings"

	"devlink-go/errcode"
)

// Level is a record severity. Records below the logger's minimum are
// dropped before any formatting happens.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Name returns the wire spelling of the level.
func (l Level) Name() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "INFO"
}

// ParseLevel maps a config spelling to a Level. Unknown spellings
// default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Record wire format, the payload of a "log" pseudo-call:
//
//	[level_len:u8][level bytes][msg_len:u16 LE][msg bytes]

// maxMsgLen keeps the whole record inside the u16 payload field of the
// carrying call frame, with room for the longest level name.
const maxMsgLen = 65535 - 1 - 5 - 2

// AppendRecord appends the wire form of one record to dst. Messages
// longer than the record can carry are truncated.
func AppendRecord(dst []byte, level, msg string) []byte {
	if len(msg) > maxMsgLen {
		msg = msg[:maxMsgLen]
	}
	dst = append(dst, byte(len(level)))
	dst = append(dst, level...)
	var ml [2]byte
	binary.LittleEndian.PutUint16(ml[:], uint16(len(msg)))
	dst = append(dst, ml[:]...)
	return append(dst, msg...)
}

// ParseRecord splits a record payload back into level and message.
// Truncated payloads fail with errcode.Protocol; trailing bytes after
// the message are tolerated.
func ParseRecord(payload []byte) (level, msg string, err error) {
	if len(payload) < 1 {
		return "", "", errcode.Protocol
	}
	ll := int(payload[0])
	if len(payload) < 1+ll+2 {
		return "", "", errcode.Protocol
	}
	level = string(payload[1 : 1+ll])
	ml := int(binary.LittleEndian.Uint16(payload[1+ll:]))
	rest := payload[1+ll+2:]
	if len(rest) < ml {
		return "", "", errcode.Protocol
	}
	return level, string(rest[:ml]), nil
}

// Sender is the outbound half of the protocol channel the logger
// forwards through. *link.Channel satisfies it.
type Sender interface {
	SendCommand(name string, payload []byte) error
}

// Logger formats records and forwards them through the channel it was
// bound to. Binding happens once at construction.
//
// Records emitted before the handshake has armed the channel are
// dropped silently, matching SendCommand's gating. There is no
// buffering, batching, or retry.
type Logger struct {
	min Level
	ch  Sender
}

// New returns a logger bound to ch that drops records below min.
func New(ch Sender, min Level) *Logger {
	return &Logger{min: min, ch: ch}
}

// Log forwards one record.
func (l *Logger) Log(lv Level, msg string) {
	if l == nil || l.ch == nil || lv < l.min {
		return
	}
	name := lv.Name()
	payload := make([]byte, 0, 1+len(name)+2+len(msg))
	payload = AppendRecord(payload, name, msg)
	// A failed send drops the record. Pre-handshake sends fail with
	// NotReady and there is no retry path for the rest either.
	_ = l.ch.SendCommand("log", payload)
}

func (l *Logger) Debug(msg string) { l.Log(LevelDebug, msg) }
func (l *Logger) Info(msg string)  { l.Log(LevelInfo, msg) }
func (l *Logger) Warn(msg string)  { l.Log(LevelWarn, msg) }
func (l *Logger) Error(msg string) { l.Log(LevelError, msg) }
