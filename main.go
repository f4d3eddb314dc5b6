package main

import (
	"time"

	"devlink-go/errcode"
	"devlink-go/link"
)

func main() {
	boot()
}

// runLink owns the dispatch loop for the life of the link. It returns
// only on the reset handler's terminal transition; transport faults
// are printed and polling continues.
func runLink(ch *link.Channel) {
	defer reportPanic(ch)

	for {
		did, err := ch.ReadAndDispatch()
		if errcode.Of(err) == errcode.Restarting {
			println("link: restarting")
			return
		}
		if err != nil {
			println("link:", err.Error())
		}
		if !did {
			// Idle poll. The UART receive side is interrupt-fed, so
			// sleeping here costs latency, not data.
			time.Sleep(500 * time.Microsecond)
		}
	}
}

// reportPanic pushes a handler panic to the host as a "panic"
// pseudo-call, then parks. The device stays up for inspection; only a
// power cycle or the reset line brings it back.
func reportPanic(ch *link.Channel) {
	r := recover()
	if r == nil {
		return
	}
	msg := "panic"
	switch v := r.(type) {
	case string:
		msg = v
	case error:
		msg = v.Error()
	}
	println("panic:", msg)
	_ = ch.SendCommand("panic", []byte(msg))
	for {
		time.Sleep(time.Hour)
	}
}
