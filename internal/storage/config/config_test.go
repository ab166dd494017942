package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte("data_dir: /tmp/pulse\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/tmp/pulse" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.WAL.Filename != "wal.log" {
		t.Errorf("WAL.Filename default = %q, want wal.log", cfg.WAL.Filename)
	}
	if cfg.Retention.Window != 24*time.Hour {
		t.Errorf("Retention.Window default = %v, want 24h", cfg.Retention.Window)
	}
	if cfg.Retention.SweepInterval != 60*time.Second {
		t.Errorf("Retention.SweepInterval default = %v, want 60s", cfg.Retention.SweepInterval)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	yaml := `
data_dir: /var/lib/pulse
wal:
  filename: points.log
  sync_mode: fsync
  buffer_size: 4096
retention:
  window: 1h
  sweep_interval: 10s
`
	cfg, err := Load([]byte(yaml))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WAL.SyncMode != "fsync" {
		t.Errorf("SyncMode = %q", cfg.WAL.SyncMode)
	}
	if cfg.WAL.BufferSize != 4096 {
		t.Errorf("BufferSize = %d", cfg.WAL.BufferSize)
	}
	if cfg.Retention.Window != time.Hour {
		t.Errorf("Window = %v", cfg.Retention.Window)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if got := cfg.WALPath(); got != filepath.Join("/var/lib/pulse", "points.log") {
		t.Errorf("WALPath = %q", got)
	}
}

func TestLoad_Malformed(t *testing.T) {
	if _, err := Load([]byte("data_dir: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad sync mode", func(c *Config) { c.WAL.SyncMode = "async" }},
		{"zero window", func(c *Config) { c.Retention.Window = 0 }},
		{"negative window", func(c *Config) { c.Retention.Window = -time.Hour }},
		{"zero sweep interval", func(c *Config) { c.Retention.SweepInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
