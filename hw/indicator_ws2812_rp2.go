//go:build (rp2040 || rp2350) && neopixel

package hw

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Boards like the RP2040-Zero route their status lamp through a single
// WS2812 pixel instead of a plain LED. GP16 is that board's data pin.
const neoPixelPin = machine.Pin(16)

// NeoIndicator drives a one-pixel WS2812 chain as the status lamp.
type NeoIndicator struct {
	dev ws2812.Device
	on  bool
	col color.RGBA
}

// NewNeoIndicator configures pin for WS2812 duty. The lamp starts off.
func NewNeoIndicator(pin machine.Pin) *NeoIndicator {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	n := &NeoIndicator{
		dev: ws2812.New(pin),
		col: color.RGBA{G: 0x20},
	}
	n.flush()
	return n
}

func (n *NeoIndicator) Set() {
	n.on = true
	n.flush()
}

func (n *NeoIndicator) Clear() {
	n.on = false
	n.flush()
}

func (n *NeoIndicator) Toggle() {
	n.on = !n.on
	n.flush()
}

func (n *NeoIndicator) flush() {
	if n.on {
		n.dev.WriteColors([]color.RGBA{n.col})
		return
	}
	n.dev.WriteColors([]color.RGBA{{}})
}

func defaultIndicator() Indicator { return NewNeoIndicator(neoPixelPin) }
