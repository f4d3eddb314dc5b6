//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"devlink-go/commands"
	"devlink-go/config"
	"devlink-go/hw"
	"devlink-go/link"
	"devlink-go/linklog"
	"devlink-go/services/heartbeat"
	"devlink-go/transport"
)

// boot wires the firmware: profile, UART, command table, channel,
// beacon, then the dispatch loop. The local println traffic stays on
// the USB CDC console; the link itself runs on the hardware UART.
func boot() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot:", boardName)

	cfg, err := config.Load(boardName)
	if err != nil {
		println("config:", err.Error())
		cfg = config.Defaults(boardName)
	}

	port, err := transport.OpenUART("uart0", cfg.BaudRate,
		machine.Pin(cfg.TxPin), machine.Pin(cfg.RxPin))
	if err != nil {
		println("uart:", err.Error())
		return
	}

	dev := hw.DefaultBoard()
	table, err := commands.NewTable(dev)
	if err != nil {
		println("table:", err.Error())
		return
	}

	ch := link.NewChannel(port, table)
	log := linklog.New(ch, linklog.ParseLevel(cfg.MinLogLevel))
	ch.SetDiag(log)

	hb := &heartbeat.Service{Interval: time.Duration(cfg.HeartbeatInterval) * time.Second}
	_ = hb.Start(context.Background(), ch)

	println("link: polling")
	runLink(ch)

	// Terminal transition: the reset handler has already pulled the
	// line, so this point is unreachable on hardware.
}
