// Package config resolves the per-board settings compiled into the
// firmware image. Profiles are plain JSON blobs living in flash;
// decoding happens once at boot.
package config

import (
	"devlink-go/errcode"
	"devlink-go/x/mathx"

	"github.com/andreyvit/tinyjson"
)

// Pico and Pico 2 route GP0..GP29 to the header.
const maxPin = 29

// Upper bound on heartbeat.interval, in seconds.
const maxHeartbeatS = 3600

// EmbeddedLookup resolves the raw profile bytes for a board name.
// Tests override it to inject synthetic profiles.
var EmbeddedLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedProfiles[board]
	return b, ok
}

// Settings is the decoded form of one board profile.
type Settings struct {
	Board string

	// BaudRate applies to the link UART.
	BaudRate uint32

	// TxPin and RxPin are plain GPIO numbers; mapping to machine.Pin
	// happens in the platform boot code.
	TxPin int
	RxPin int

	// HeartbeatInterval is in seconds; 0 disables the beacon.
	HeartbeatInterval int

	// MinLogLevel is the name of the lowest level forwarded to the
	// host ("debug", "info", "warn", "error").
	MinLogLevel string
}

// Defaults returns the settings used for fields a profile omits. Pins
// default to GP0/GP1, the UART0 pair on both Pico generations.
func Defaults(board string) Settings {
	return Settings{
		Board:             board,
		BaudRate:          115200,
		TxPin:             0,
		RxPin:             1,
		HeartbeatInterval: 2,
		MinLogLevel:       "debug",
	}
}

// Load resolves and decodes the profile for board. Omitted fields keep
// their defaults; a missing profile or a non-object document is an
// error.
func Load(board string) (Settings, error) {
	const op = "config.Load"

	raw, ok := EmbeddedLookup(board)
	if !ok || len(raw) == 0 {
		return Settings{}, &errcode.E{C: errcode.InvalidParams, Op: op,
			Msg: "no embedded profile for board " + board}
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return Settings{}, &errcode.E{C: errcode.InvalidParams, Op: op,
			Msg: "profile for " + board + " is not a JSON object"}
	}

	s := Defaults(board)
	if uart, ok := m["uart"].(map[string]any); ok {
		if v, ok := asInt(uart["baud_rate"]); ok && v > 0 {
			s.BaudRate = uint32(v)
		}
		if v, ok := asInt(uart["tx_pin"]); ok && v >= 0 {
			s.TxPin = mathx.Clamp(v, 0, maxPin)
		}
		if v, ok := asInt(uart["rx_pin"]); ok && v >= 0 {
			s.RxPin = mathx.Clamp(v, 0, maxPin)
		}
	}
	if hb, ok := m["heartbeat"].(map[string]any); ok {
		if v, ok := asInt(hb["interval"]); ok && v >= 0 {
			s.HeartbeatInterval = mathx.Clamp(v, 0, maxHeartbeatS)
		}
	}
	if lg, ok := m["log"].(map[string]any); ok {
		if v, ok := lg["min_level"].(string); ok && v != "" {
			s.MinLogLevel = v
		}
	}
	return s, nil
}

// asInt converts whichever numeric shape the JSON parser hands back.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}
