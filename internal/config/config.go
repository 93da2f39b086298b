// Package config manages catdog configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultMaxBackupsPerFile is the retention count per original file.
const DefaultMaxBackupsPerFile = 10

// DefaultStaleAfterDays is the age after which a backup is flagged stale.
const DefaultStaleAfterDays = 30

// Config represents the catdog configuration. Every component receives the
// values it needs through its constructor; nothing reads this as a global.
type Config struct {
	// BackupRoot is the directory tree holding all backup copies.
	BackupRoot string `json:"backup_root,omitempty"`

	// EventLogPath is the append-only backup event log.
	EventLogPath string `json:"event_log_path,omitempty"`

	// MaxBackupsPerFile is the per-original-path retention count.
	MaxBackupsPerFile int `json:"max_backups_per_file,omitempty"`

	// StaleAfterDays flags backups older than this as stale in health checks.
	StaleAfterDays int `json:"stale_after_days,omitempty"`

	// ScanBytesPerSec throttles checksum recomputation during health checks
	// and drills. Zero means unthrottled.
	ScanBytesPerSec int64 `json:"scan_bytes_per_sec,omitempty"`

	// Watch daemon settings
	WatchPaths     []string `json:"watch_paths,omitempty"`
	WatchSchedule  string   `json:"watch_schedule,omitempty"`
	HealthSchedule string   `json:"health_schedule,omitempty"`

	// Logging settings
	LogLevel string `json:"log_level,omitempty"`
	LogJSON  bool   `json:"log_json,omitempty"`

	// ConfigDir is where the config was loaded from (not serialized).
	ConfigDir string `json:"-"`
}

// DefaultConfigDir returns the default config directory (~/.catdog).
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".catdog")
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	c := &Config{ConfigDir: DefaultConfigDir()}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	home, _ := os.UserHomeDir()
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir()
	}
	if c.BackupRoot == "" {
		c.BackupRoot = filepath.Join(home, ".catdog_backups")
	}
	if c.EventLogPath == "" {
		c.EventLogPath = filepath.Join(c.ConfigDir, "backup_events.log")
	}
	if c.MaxBackupsPerFile <= 0 {
		c.MaxBackupsPerFile = DefaultMaxBackupsPerFile
	}
	if c.StaleAfterDays <= 0 {
		c.StaleAfterDays = DefaultStaleAfterDays
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load loads configuration from configDir. A missing config file is not an
// error: catdog works out of the box, so defaults are returned. A present but
// unreadable or malformed file is an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	configPath := filepath.Join(configDir, "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{ConfigDir: configDir}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	cfg.ConfigDir = configDir
	cfg.applyDefaults()
	return &cfg, nil
}

// Exists reports whether a config file is present in configDir.
func Exists(configDir string) bool {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	_, err := os.Stat(filepath.Join(configDir, "config.json"))
	return err == nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir()
	}

	if err := os.MkdirAll(c.ConfigDir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.ConfigDir, "config.json"), data, 0o600)
}
