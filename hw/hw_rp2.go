//go:build rp2040 || rp2350

package hw

import (
	"machine"
	"time"
)

// pinIndicator drives a plain GPIO status LED.
type pinIndicator struct {
	p machine.Pin
}

// NewPinIndicator configures pin as an output and returns it as the
// status lamp.
func NewPinIndicator(pin machine.Pin) Indicator {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &pinIndicator{p: pin}
}

func (l *pinIndicator) Set()   { l.p.High() }
func (l *pinIndicator) Clear() { l.p.Low() }

func (l *pinIndicator) Toggle() {
	if l.p.Get() {
		l.p.Low()
	} else {
		l.p.High()
	}
}

// sleepClock delays on the scheduler; adequate for the coarse
// millisecond waits the command bodies ask for.
type sleepClock struct{}

func (sleepClock) DelayMS(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// rp2System resets via the watchdog.
type rp2System struct{}

func (rp2System) Restart() {
	machine.CPUReset()
	for {
		// The reset takes a watchdog period to bite.
	}
}

// DefaultBoard wires the Device for Pico-class boards: the default
// indicator (board LED, or the status pixel under the neopixel tag),
// a sleeping clock, and the watchdog reset line.
func DefaultBoard() *Device {
	return &Device{
		Indicator: defaultIndicator(),
		Clock:     sleepClock{},
		System:    rp2System{},
	}
}
