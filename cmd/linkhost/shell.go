package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"devlink-go/hostlink"
	"devlink-go/linklog"
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var commands = []*ishell.Cmd{
	&ConnectCmd,
	&DisconnectCmd,
	&PingCmd,
	&LedCmd,
	&ResetCmd,
	&CallCmd,
	&MonitorCmd,
	&PlayCmd,
}

// Shell is the interactive console around one device session.
type Shell struct {
	Interactive bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  Config
	Logger  zerolog.Logger
	Session *Session
}

// Session is an open port with a handshaken client on it.
type Session struct {
	Path   string
	Port   serial.Port
	Client *hostlink.Client
}

// NewShell creates a new console.
func NewShell(cfg Config, logger zerolog.Logger) *Shell {
	s := &Shell{
		Interactive: true,
		Shell:       ishell.New(),
		Config:      cfg,
		Logger:      logger,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets the Shell back out of an ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func that requires a session.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Connect opens path, wires the diagnostic sinks and performs the
// ready handshake.
func (s *Shell) Connect(path string) error {
	mode := &serial.Mode{BaudRate: s.Config.Baud}
	port, err := serial.Open(path, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(s.Config.ReadTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("set read timeout: %w", err)
	}

	client := hostlink.New(port,
		hostlink.WithLogSink(s.deviceLog),
		hostlink.WithHeartbeatSink(s.deviceBeat),
		hostlink.WithPanicSink(s.devicePanic),
		hostlink.WithCallSink(s.deviceCall),
	)

	ctx, cancel := s.callCtx()
	defer cancel()
	if err := client.Handshake(ctx); err != nil {
		_ = port.Close()
		return fmt.Errorf("handshake: %w", err)
	}

	s.Disconnect()
	s.Session = &Session{Path: path, Port: port, Client: client}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", filepath.Base(path)))
	s.Logger.Info().Str("port", path).Int("baud", s.Config.Baud).Msg("link up")
	return nil
}

// Disconnect closes the current session, if any.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		_ = s.Session.Port.Close()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the console: one-shot when args are given, interactive
// otherwise.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(s.Config.Port); err != nil {
			s.Logger.Fatal().Err(err).Msg("connect")
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			s.Logger.Fatal().Err(err).Msg("process")
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	s.Logger.Fatal().Msg("command expected")
}

func (s *Shell) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Config.CallTimeout)
}

// Sinks for the device's share of the wire.

func (s *Shell) deviceLog(lv linklog.Level, msg string) {
	s.Logger.WithLevel(deviceLevel(lv)).Str("origin", "device").Msg(msg)
}

func (s *Shell) deviceBeat(seq uint16, clockMS uint32) {
	s.Logger.Debug().Str("origin", "device").
		Uint16("seq", seq).Uint32("clock_ms", clockMS).Msg("heartbeat")
}

func (s *Shell) devicePanic(msg string) {
	s.Logger.Error().Str("origin", "device").Msg("panic: " + msg)
}

func (s *Shell) deviceCall(name string, payload []byte) {
	s.Logger.Warn().Str("origin", "device").Str("name", name).
		Hex("payload", payload).Msg("unexpected call")
}

func deviceLevel(lv linklog.Level) zerolog.Level {
	switch lv {
	case linklog.LevelDebug:
		return zerolog.DebugLevel
	case linklog.LevelWarn:
		return zerolog.WarnLevel
	case linklog.LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// parsePayload converts byte arguments (decimal or 0x-prefixed hex)
// into a payload slice.
func parsePayload(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]byte, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("byte %q: %w", a, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}

var (
	// ConnectCmd opens a device session.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PATH] open the port and handshake",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			path := s.Config.Port
			if len(c.Args) > 0 {
				path = c.Args[0]
			}
			if path == "" {
				c.Err(fmt.Errorf("no port given and none configured"))
				return
			}
			if err := s.Connect(path); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes the current session.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// PingCmd round-trips an echo payload.
	PingCmd = ishell.Cmd{
		Name: "ping",
		Help: "[BYTE ...] round-trip an echo payload",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			payload, err := parsePayload(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(payload) == 0 {
				payload = []byte{0x07, 0x08}
			}
			ctx, cancel := s.callCtx()
			defer cancel()
			reply, err := s.Session.Client.Call(ctx, "ping", payload, len(payload))
			if err != nil {
				c.Err(err)
				return
			}
			if !bytes.Equal(reply, payload) {
				c.Err(fmt.Errorf("echo mismatch: sent % x, got % x", payload, reply))
				return
			}
			c.Printf("pong % x\n", reply)
		}),
	}

	// LedCmd drives the status indicator.
	LedCmd = ishell.Cmd{
		Name: "led",
		Help: "on|off|toggle the status indicator",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			arg := "toggle"
			if len(c.Args) > 0 {
				arg = c.Args[0]
			}
			var payload []byte
			switch arg {
			case "on":
				payload = []byte{1}
			case "off":
				payload = []byte{0}
			case "toggle":
			default:
				c.Err(fmt.Errorf("want on, off or toggle"))
				return
			}
			ctx, cancel := s.callCtx()
			defer cancel()
			if _, err := s.Session.Client.Call(ctx, "set_led", payload, 0); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	// ResetCmd restarts the device. The reply never comes: the device
	// blinks its countdown and reboots, so the session is dropped.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "restart the device and drop the session",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if err := s.Session.Client.Send("reset", nil); err != nil {
				c.Err(err)
				return
			}
			s.Logger.Info().Msg("device restarting; reconnect when it is back")
			s.Disconnect()
		}),
	}

	// CallCmd invokes an arbitrary function by name.
	CallCmd = ishell.Cmd{
		Name: "call",
		Help: "NAME REPLY_LEN [BYTE ...] invoke a raw function",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("usage: call NAME REPLY_LEN [BYTE ...]"))
				return
			}
			replyLen, err := strconv.Atoi(c.Args[1])
			if err != nil || replyLen < 0 {
				c.Err(fmt.Errorf("bad reply length %q", c.Args[1]))
				return
			}
			payload, err := parsePayload(c.Args[2:])
			if err != nil {
				c.Err(err)
				return
			}
			ctx, cancel := s.callCtx()
			defer cancel()
			reply, err := s.Session.Client.Call(ctx, c.Args[0], payload, replyLen)
			if err != nil {
				c.Err(err)
				return
			}
			if len(reply) == 0 {
				c.Println("OK (empty reply)")
				return
			}
			c.Printf("reply % x\n", reply)
		}),
	}

	// MonitorCmd prints the device's diagnostic traffic.
	MonitorCmd = ishell.Cmd{
		Name:    "monitor",
		Aliases: []string{"mon"},
		Help:    "[COUNT] print device traffic (logs, beacons)",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			n := s.Config.MonitorCount
			if len(c.Args) > 0 {
				v, err := strconv.Atoi(c.Args[0])
				if err != nil || v <= 0 {
					c.Err(fmt.Errorf("bad count %q", c.Args[0]))
					return
				}
				n = v
			}
			ctx, cancel := context.WithTimeout(context.Background(),
				time.Duration(n)*s.Config.CallTimeout)
			defer cancel()
			for i := 0; i < n; i++ {
				if err := s.Session.Client.ServiceOne(ctx); err != nil {
					c.Err(err)
					return
				}
			}
		}),
	}

	// PlayCmd runs commands from a script file.
	PlayCmd = ishell.Cmd{
		Name: "play",
		Help: "FILE run commands from a script",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: play FILE"))
				return
			}
			if err := ShellFrom(c).Play(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}
)
