// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the top-level configuration for hostwatch.
type Config struct {
	Instance InstanceConfig         `toml:"instance"`
	Log      LogConfig              `toml:"log"`
	Disk     DiskConfig             `toml:"disk"`
	Limits   map[string]LimitConfig `toml:"limits"`
	Mail     MailConfig             `toml:"mail"`
	History  HistoryConfig          `toml:"history"`
}

// InstanceConfig identifies this machine.
type InstanceConfig struct {
	ID string `toml:"id"`
}

// LogConfig controls the structured logger and the monitoring log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DiskConfig lists the mount points checked by disk_usage.
type DiskConfig struct {
	Paths []string `toml:"paths"`
}

// LimitConfig holds the soft and hard thresholds for one metric. A nil
// limit means the metric is informational only and always classifies OK.
// A [limits.<metric>] section in the file replaces the built-in entry for
// that metric wholesale, so an empty section clears its default limits.
type LimitConfig struct {
	Soft *float64 `toml:"soft"`
	Hard *float64 `toml:"hard"`
}

// MailConfig controls email notification. API credentials are never read
// from the file; they come from MAILJET_API_KEY and MAILJET_API_SECRET.
type MailConfig struct {
	Mode     string `toml:"mode"`
	Endpoint string `toml:"endpoint"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
	To       string `toml:"to"`

	APIKey    string `toml:"-"`
	APISecret string `toml:"-"`
}

// HistoryConfig controls the optional run history database.
type HistoryConfig struct {
	Enabled   bool     `toml:"enabled"`
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "5m", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func limit(v float64) *float64 { return &v }

// Default returns a Config with sensible defaults. The built-in limit
// table covers disk_usage (80/95), memory_usage (80/90) and process_count
// (150/220); user_count ships without limits and only ever reports OK.
func Default() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return &Config{
		Instance: InstanceConfig{
			ID: hostname,
		},
		Log: LogConfig{
			Level: "info",
			File:  "server_monitoring.log",
		},
		Disk: DiskConfig{
			Paths: []string{"/"},
		},
		Limits: map[string]LimitConfig{
			"disk_usage":    {Soft: limit(80), Hard: limit(95)},
			"memory_usage":  {Soft: limit(80), Hard: limit(90)},
			"process_count": {Soft: limit(150), Hard: limit(220)},
		},
		Mail: MailConfig{
			Mode:     "per_metric",
			Endpoint: "https://api.mailjet.com/v3.1/send",
			FromName: "Server Monitoring",
		},
		History: HistoryConfig{
			Enabled:   true,
			Retention: Duration{30 * 24 * time.Hour},
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "hostwatch", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
// A .env file in the working directory is loaded first, then environment
// variables (MAILJET_API_KEY, MAILJET_API_SECRET, MAIL_FROM, MAIL_TO,
// MONITOR_LOG) override whatever the file set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MAILJET_API_KEY"); v != "" {
		c.Mail.APIKey = v
	}
	if v := os.Getenv("MAILJET_API_SECRET"); v != "" {
		c.Mail.APISecret = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv("MAIL_TO"); v != "" {
		c.Mail.To = v
	}
	if v := os.Getenv("MONITOR_LOG"); v != "" {
		c.Log.File = v
	}
}

// LimitsFor returns the configured thresholds for a metric name. Both are
// nil when the metric has no limit entry.
func (c *Config) LimitsFor(name string) (soft, hard *float64) {
	lc, ok := c.Limits[name]
	if !ok {
		return nil, nil
	}
	return lc.Soft, lc.Hard
}

// HistoryPath returns the history database location, resolving the default
// under the user config dir when unset.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "hostwatch", "history.db")
}
