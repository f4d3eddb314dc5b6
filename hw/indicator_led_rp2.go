//go:build (rp2040 || rp2350) && !neopixel

package hw

import "machine"

func defaultIndicator() Indicator { return NewPinIndicator(machine.LED) }
