//go:build rp2040 || rp2350

package transport

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"devlink-go/errcode"
)

// OpenUART configures one of the hardware UARTs for link duty and
// returns it as a Port. id is "uart0" or "uart1". The uartx driver is
// IRQ-fed: its receive interrupt fills the ring buffer that Read
// drains, so Read keeps the non-blocking Port contract.
func OpenUART(id string, baud uint32, tx, rx machine.Pin) (Port, error) {
	var hw *uartx.UART
	switch id {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "transport.OpenUART", Msg: "unknown uart id " + id}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       tx,
		RX:       rx,
	}); err != nil {
		return nil, &errcode.E{C: errcode.Transport, Op: "transport.OpenUART", Err: err}
	}
	return hw, nil
}

// USB returns the USB CDC console as a Port. The CDC endpoint is
// serviced by the runtime's USB interrupt, so reads observe whatever
// the ISR has already buffered.
//
// Anything else printing to the CDC console (println debugging) will
// interleave with frame bytes; boards using this port should keep the
// console quiet once the link is up.
func USB() Port { return usbPort{} }

type usbPort struct{}

func (usbPort) Buffered() int { return machine.Serial.Buffered() }

func (usbPort) Read(p []byte) (int, error) {
	n := machine.Serial.Buffered()
	if n == 0 {
		return 0, nil
	}
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			// Drained between Buffered and ReadByte; report what we got.
			return i, nil
		}
		p[i] = b
	}
	return n, nil
}

func (usbPort) Write(p []byte) (int, error) { return machine.Serial.Write(p) }
