// Command linkhost is a bench console for a device running the link
// firmware. It talks over a serial port, invokes device functions and
// prints the diagnostic stream the device sends back on the same wire.
//
// Interactive use:
//
//	linkhost -port /dev/ttyACM0 -connect
//
// One-shot use (any shell command works as arguments):
//
//	linkhost -port /dev/ttyACM0 -connect led on
package main

import "flag"

var (
	configPath  string
	portPath    string
	baudRate    int
	autoConnect bool
	evalOnly    bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to a TOML config file.")
	flag.StringVar(&portPath, "port", "", "Serial port; overrides the config file.")
	flag.IntVar(&baudRate, "baud", 0, "Baud rate; overrides the config file.")
	flag.BoolVar(&autoConnect, "connect", false, "Connect to the configured port on startup.")
	flag.BoolVar(&evalOnly, "e", false, "Evaluation only, no interactive shell.")
}

func main() {
	flag.Parse()
	logger := initLogger("linkhost")

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if portPath != "" {
		cfg.Port = portPath
	}
	if baudRate > 0 {
		cfg.Baud = baudRate
	}

	s := NewShell(cfg, logger)
	s.Interactive = !evalOnly
	s.AutoConnect = autoConnect
	s.Run(flag.Args()...)
}
