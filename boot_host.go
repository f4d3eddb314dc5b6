//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"os"
	"sync"
	"time"

	"devlink-go/commands"
	"devlink-go/config"
	"devlink-go/hostlink"
	"devlink-go/hw"
	"devlink-go/link"
	"devlink-go/linklog"
	"devlink-go/services/heartbeat"
	"devlink-go/transport"
)

// On host builds the firmware loop runs against one end of an
// in-memory loopback while a scripted driver works the other end, so
// the whole wire path can be exercised without a board attached.

type check struct {
	name string
	fn   func() bool
}

func boot() {
	cfg, err := config.Load("host")
	if err != nil {
		println("config:", err.Error())
		cfg = config.Defaults("host")
	}

	devEnd, hostEnd := transport.Loopback(1024)

	dev := hw.DefaultBoard()
	indicator := dev.Indicator.(*hw.FakeIndicator)
	system := dev.System.(*hw.FakeSystem)

	table, err := commands.NewTable(dev)
	if err != nil {
		println("table:", err.Error())
		os.Exit(1)
	}

	ch := link.NewChannel(devEnd, table)
	log := linklog.New(ch, linklog.ParseLevel(cfg.MinLogLevel))
	ch.SetDiag(log)

	// The host profile disables the beacon; the drill wants a fast one.
	hbCtx, stopBeacon := context.WithCancel(context.Background())
	hb := &heartbeat.Service{Interval: 50 * time.Millisecond}
	_ = hb.Start(hbCtx, ch)

	restarted := make(chan struct{})
	go func() {
		runLink(ch)
		close(restarted)
	}()

	var (
		mu    sync.Mutex
		logs  []string
		beats int
	)
	sawLog := func(want string) bool {
		mu.Lock()
		defer mu.Unlock()
		for _, l := range logs {
			if l == want {
				return true
			}
		}
		return false
	}
	countBeats := func() int {
		mu.Lock()
		defer mu.Unlock()
		return beats
	}

	driver := hostlink.New(hostEnd,
		hostlink.WithLogSink(func(level linklog.Level, msg string) {
			mu.Lock()
			logs = append(logs, level.Name()+" "+msg)
			mu.Unlock()
		}),
		hostlink.WithHeartbeatSink(func(seq uint16, clockMS uint32) {
			mu.Lock()
			beats++
			mu.Unlock()
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	equal := func(a, b []byte) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	checks := []check{
		{"handshake", func() bool {
			if err := driver.Handshake(ctx); err != nil {
				println("  handshake:", err.Error())
				return false
			}
			return driver.Ready() && ch.Ready()
		}},
		{"handshake repeat", func() bool {
			if err := driver.Handshake(ctx); err != nil {
				println("  handshake:", err.Error())
				return false
			}
			return ch.Ready()
		}},
		{"ping echo", func() bool {
			reply, err := driver.Call(ctx, "ping", []byte{7, 8}, 2)
			if err != nil {
				println("  ping:", err.Error())
				return false
			}
			return equal(reply, []byte{7, 8})
		}},
		{"set_led on", func() bool {
			if _, err := driver.Call(ctx, "set_led", []byte{1}, 0); err != nil {
				println("  set_led:", err.Error())
				return false
			}
			return indicator.On()
		}},
		{"set_led off", func() bool {
			if _, err := driver.Call(ctx, "set_led", []byte{0}, 0); err != nil {
				println("  set_led:", err.Error())
				return false
			}
			return !indicator.On()
		}},
		{"set_led toggle", func() bool {
			if _, err := driver.Call(ctx, "set_led", nil, 0); err != nil {
				println("  set_led:", err.Error())
				return false
			}
			return indicator.On()
		}},
		{"unknown function replies empty", func() bool {
			reply, err := driver.Call(ctx, "no_such_function", nil, 0)
			if err != nil {
				println("  call:", err.Error())
				return false
			}
			return reply == nil
		}},
		{"log record forwarded", func() bool {
			log.Info("self-test record")
			for !sawLog("INFO self-test record") {
				if err := driver.ServiceOne(ctx); err != nil {
					println("  service:", err.Error())
					return false
				}
			}
			return true
		}},
		{"heartbeat beacons flow", func() bool {
			for countBeats() < 2 {
				if err := driver.ServiceOne(ctx); err != nil {
					println("  service:", err.Error())
					return false
				}
			}
			stopBeacon()
			return true
		}},
		{"reset is terminal", func() bool {
			if err := driver.Send("reset", nil); err != nil {
				println("  reset:", err.Error())
				return false
			}
			select {
			case <-restarted:
			case <-time.After(5 * time.Second):
				println("  reset: dispatch loop still running")
				return false
			}
			return system.Restarts() == 1
		}},
		{"panic is reported", func() bool { return panicDrill(ctx) }},
	}

	passed, failed := 0, 0
	println("== link self-test starting ==")
	for _, c := range checks {
		if c.fn() {
			println("[PASS]", c.name)
			passed++
		} else {
			println("[FAIL]", c.name)
			failed++
		}
	}
	println("== done:", passed, "passed,", failed, "failed ==")
	if failed > 0 {
		os.Exit(1)
	}
}

// panicDrill runs a throwaway device with one booby-trapped command
// and confirms the dispatch loop converts the handler panic into a
// "panic" pseudo-call. The trapped loop parks afterwards and is left
// to die with the process.
func panicDrill(ctx context.Context) bool {
	devEnd, hostEnd := transport.Loopback(1024)

	dev := hw.DefaultBoard()
	table, err := commands.NewTable(dev)
	if err != nil {
		println("  table:", err.Error())
		return false
	}
	if err := table.Register("blow_up", func([]byte) ([]byte, link.Disposition) {
		panic("blown fuse")
	}); err != nil {
		println("  register:", err.Error())
		return false
	}

	ch := link.NewChannel(devEnd, table)
	go runLink(ch)

	got := make(chan string, 1)
	driver := hostlink.New(hostEnd,
		hostlink.WithPanicSink(func(msg string) { got <- msg }))

	if err := driver.Handshake(ctx); err != nil {
		println("  handshake:", err.Error())
		return false
	}
	if err := driver.Send("blow_up", nil); err != nil {
		println("  send:", err.Error())
		return false
	}
	for {
		if err := driver.ServiceOne(ctx); err != nil {
			println("  service:", err.Error())
			return false
		}
		select {
		case msg := <-got:
			return msg == "blown fuse"
		default:
		}
	}
}
