package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the console's settings.
type Config struct {
	// Port is the serial device path, e.g. /dev/ttyACM0.
	Port string

	Baud int

	// ReadTimeout is applied to the port so blocked reads surface
	// context cancellation; it is not a per-call deadline.
	ReadTimeout time.Duration

	// CallTimeout bounds one function invocation, handshake included.
	CallTimeout time.Duration

	// MonitorCount is how many device events "monitor" prints when no
	// count argument is given.
	MonitorCount int
}

func defaultConfig() Config {
	return Config{
		Baud:         115200,
		ReadTimeout:  100 * time.Millisecond,
		CallTimeout:  3 * time.Second,
		MonitorCount: 10,
	}
}

type fileConfig struct {
	Port         string `toml:"port"`
	Baud         int    `toml:"baud"`
	ReadTimeout  string `toml:"read_timeout"`
	CallTimeout  string `toml:"call_timeout"`
	MonitorCount int    `toml:"monitor_count"`
}

// loadConfig reads path over the defaults; an empty path returns the
// defaults untouched.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load linkhost config: %w", err)
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") && raw.Baud > 0 {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if meta.IsDefined("call_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CallTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse call_timeout: %w", err)
		}
		cfg.CallTimeout = d
	}
	if meta.IsDefined("monitor_count") && raw.MonitorCount > 0 {
		cfg.MonitorCount = raw.MonitorCount
	}
	return cfg, nil
}
