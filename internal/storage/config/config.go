// Package config defines the storage configuration and its defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pulsedb/pulse/internal/errors"
)

// Config represents the complete store configuration.
type Config struct {
	// DataDir is the root directory for all storage files.
	DataDir string `yaml:"data_dir"`

	// WAL configures the append-only durability log.
	WAL WALConfig `yaml:"wal"`

	// Retention defines how long points stay in the in-memory index.
	Retention RetentionConfig `yaml:"retention"`
}

// WALConfig configures the durability log.
//
// The store appends synchronously: every insert is serialized, written, and
// flushed before it is acknowledged. This trades throughput for the guarantee
// that an acknowledged point survives a process crash. A queued asynchronous
// writer would be faster but opens a durability-loss window; it is
// deliberately not offered.
type WALConfig struct {
	// Filename is the log file name inside DataDir. Default: "wal.log".
	Filename string `yaml:"filename"`

	// SyncMode is "flush" (flush to the OS per append, the default) or
	// "fsync" (additionally fsync per append).
	SyncMode string `yaml:"sync_mode"`

	// BufferSize is the write buffer size in bytes. Default: 64KB.
	BufferSize int `yaml:"buffer_size"`
}

// RetentionConfig configures the retention reaper.
type RetentionConfig struct {
	// Window is the maximum age of points kept in the index. Default: 24h.
	Window time.Duration `yaml:"window"`

	// SweepInterval is how often the reaper evicts expired buckets.
	// Default: 60s.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		WAL: WALConfig{
			Filename:   "wal.log",
			SyncMode:   "flush",
			BufferSize: 64 * 1024,
		},
		Retention: RetentionConfig{
			Window:        24 * time.Hour,
			SweepInterval: 60 * time.Second,
		},
	}
}

// Load parses a YAML config, applying defaults for unset fields.
func Load(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Load(data)
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.WAL.Filename == "" {
		c.WAL.Filename = def.WAL.Filename
	}
	if c.WAL.SyncMode == "" {
		c.WAL.SyncMode = def.WAL.SyncMode
	}
	if c.WAL.BufferSize <= 0 {
		c.WAL.BufferSize = def.WAL.BufferSize
	}
	if c.Retention.Window == 0 {
		c.Retention.Window = def.Retention.Window
	}
	if c.Retention.SweepInterval == 0 {
		c.Retention.SweepInterval = def.Retention.SweepInterval
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "data_dir is required")
	}
	if c.WAL.Filename == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "wal.filename is required")
	}
	if c.WAL.SyncMode != "flush" && c.WAL.SyncMode != "fsync" {
		return errors.Wrapf(errors.ErrInvalidConfig, "wal.sync_mode %q (want flush or fsync)", c.WAL.SyncMode)
	}
	if c.Retention.Window <= 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "retention.window must be positive")
	}
	if c.Retention.SweepInterval <= 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "retention.sweep_interval must be positive")
	}
	return nil
}

// EnsureDirectories creates the data directory if it does not exist.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// WALPath returns the full path of the durability log.
func (c *Config) WALPath() string {
	return filepath.Join(c.DataDir, c.WAL.Filename)
}
