package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg != defaultConfig() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
port = " /dev/ttyACM1 "
baud = 921600
read_timeout = "250ms"
call_timeout = "10s"
monitor_count = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "/dev/ttyACM1" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.Baud != 921600 {
		t.Fatalf("unexpected baud: %d", cfg.Baud)
	}
	if cfg.ReadTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected read timeout: %v", cfg.ReadTimeout)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
	if cfg.MonitorCount != 3 {
		t.Fatalf("unexpected monitor count: %d", cfg.MonitorCount)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
baud = 57600
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Baud != 57600 {
		t.Fatalf("unexpected baud: %d", cfg.Baud)
	}
	def := defaultConfig()
	if cfg.ReadTimeout != def.ReadTimeout || cfg.CallTimeout != def.CallTimeout {
		t.Fatalf("timeouts drifted from defaults: %+v", cfg)
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
call_timeout = "soon"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
