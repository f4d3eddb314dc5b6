// Package commands holds the device functions the host can invoke and
// builds the fixed table the dispatcher routes into. Handlers close
// over the hardware context they were built with; nothing here touches
// package-level state.
package commands

import (
	"devlink-go/hw"
	"devlink-go/link"
)

// NewTable builds the command table over dev. The table is complete
// after this returns: entries are never added or removed at runtime.
func NewTable(dev *hw.Device) (*link.Registry, error) {
	reg := link.NewRegistry()
	if err := reg.Register("set_led", SetLED(dev)); err != nil {
		return nil, err
	}
	if err := reg.Register("reset", Reset(dev)); err != nil {
		return nil, err
	}
	if err := reg.Register("ping", Ping()); err != nil {
		return nil, err
	}
	return reg, nil
}

// SetLED drives the status indicator: an empty payload toggles it,
// payload[0] == 0 clears it, anything else sets it. The reply is
// empty; there are no error conditions.
func SetLED(dev *hw.Device) link.Handler {
	return func(p []byte) ([]byte, link.Disposition) {
		switch {
		case len(p) == 0:
			dev.Indicator.Toggle()
		case p[0] == 0:
			dev.Indicator.Clear()
		default:
			dev.Indicator.Set()
		}
		return nil, link.Reply
	}
}

const (
	resetBlinks  = 11
	resetDelayMS = 84
)

// Reset ignores its payload, blinks the visible countdown and pulls
// the reset line. The restart disposition tells the dispatcher not to
// send a reply. On hardware Restart never returns; the host fake
// records the call and does, which is what lets tests observe the
// countdown.
func Reset(dev *hw.Device) link.Handler {
	return func(p []byte) ([]byte, link.Disposition) {
		for i := 0; i < resetBlinks; i++ {
			dev.Indicator.Toggle()
			dev.Clock.DelayMS(resetDelayMS)
		}
		dev.System.Restart()
		return nil, link.Restarting
	}
}

// Ping echoes its payload back, proving the round trip end to end.
func Ping() link.Handler {
	return func(p []byte) ([]byte, link.Disposition) {
		return p, link.Reply
	}
}
