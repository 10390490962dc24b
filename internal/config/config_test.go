package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Instance.ID == "" {
		t.Error("default instance ID should not be empty")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.File != "server_monitoring.log" {
		t.Errorf("default log file = %q, want %q", cfg.Log.File, "server_monitoring.log")
	}
	if len(cfg.Disk.Paths) != 1 || cfg.Disk.Paths[0] != "/" {
		t.Errorf("default disk paths = %v, want [/]", cfg.Disk.Paths)
	}
	if cfg.Mail.Mode != "per_metric" {
		t.Errorf("default mail mode = %q, want %q", cfg.Mail.Mode, "per_metric")
	}
	if cfg.Mail.Endpoint != "https://api.mailjet.com/v3.1/send" {
		t.Errorf("default mail endpoint = %q", cfg.Mail.Endpoint)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if cfg.History.Retention.Duration != 30*24*time.Hour {
		t.Errorf("default retention = %v, want 720h", cfg.History.Retention.Duration)
	}
}

func TestDefaultLimitTable(t *testing.T) {
	cfg := Default()

	tests := []struct {
		metric     string
		soft, hard float64
	}{
		{"disk_usage", 80, 95},
		{"memory_usage", 80, 90},
		{"process_count", 150, 220},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			soft, hard := cfg.LimitsFor(tt.metric)
			if soft == nil || hard == nil {
				t.Fatalf("LimitsFor(%q) = (%v, %v), want both set", tt.metric, soft, hard)
			}
			if *soft != tt.soft || *hard != tt.hard {
				t.Errorf("LimitsFor(%q) = (%v, %v), want (%v, %v)", tt.metric, *soft, *hard, tt.soft, tt.hard)
			}
		})
	}

	if soft, hard := cfg.LimitsFor("user_count"); soft != nil || hard != nil {
		t.Errorf("LimitsFor(user_count) = (%v, %v), want (nil, nil)", soft, hard)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("loading nonexistent config should return defaults, got error: %v", err)
	}
	if cfg.Log.File != "server_monitoring.log" {
		t.Errorf("log file = %q, want default", cfg.Log.File)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[instance]
id = "web-3"

[log]
level = "debug"
file = "/var/log/hostwatch.log"

[disk]
paths = ["/", "/data"]

[limits.disk_usage]
soft = 70.0
hard = 85.0

[mail]
mode = "one_email"
from = "monitor@example.com"
from_name = "Ops"
to = "oncall@example.com"

[history]
enabled = false
retention = "168h"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Instance.ID != "web-3" {
		t.Errorf("instance.id = %q, want %q", cfg.Instance.ID, "web-3")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.File != "/var/log/hostwatch.log" {
		t.Errorf("log.file = %q", cfg.Log.File)
	}
	if len(cfg.Disk.Paths) != 2 || cfg.Disk.Paths[1] != "/data" {
		t.Errorf("disk.paths = %v, want [/ /data]", cfg.Disk.Paths)
	}

	soft, hard := cfg.LimitsFor("disk_usage")
	if soft == nil || *soft != 70 {
		t.Errorf("disk_usage soft = %v, want 70", soft)
	}
	if hard == nil || *hard != 85 {
		t.Errorf("disk_usage hard = %v, want 85", hard)
	}

	// Sections not mentioned keep their defaults.
	soft, hard = cfg.LimitsFor("memory_usage")
	if soft == nil || *soft != 80 || hard == nil || *hard != 90 {
		t.Errorf("memory_usage limits = (%v, %v), want defaults (80, 90)", soft, hard)
	}

	if cfg.Mail.Mode != "one_email" {
		t.Errorf("mail.mode = %q, want %q", cfg.Mail.Mode, "one_email")
	}
	if cfg.Mail.From != "monitor@example.com" || cfg.Mail.To != "oncall@example.com" {
		t.Errorf("mail from/to = %q/%q", cfg.Mail.From, cfg.Mail.To)
	}
	if cfg.History.Enabled {
		t.Error("history.enabled = true, want false")
	}
	if cfg.History.Retention.Duration != 7*24*time.Hour {
		t.Errorf("history.retention = %v, want 168h", cfg.History.Retention.Duration)
	}
}

func TestEmptyLimitSectionClearsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[limits.memory_usage]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if soft, hard := cfg.LimitsFor("memory_usage"); soft != nil || hard != nil {
		t.Errorf("memory_usage limits = (%v, %v), want cleared", soft, hard)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("not valid [[[ toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[log]
file = "from_file.log"

[mail]
from = "file@example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MAILJET_API_KEY", "key-123")
	t.Setenv("MAILJET_API_SECRET", "secret-456")
	t.Setenv("MAIL_FROM", "env@example.com")
	t.Setenv("MAIL_TO", "oncall@example.com")
	t.Setenv("MONITOR_LOG", "from_env.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Mail.APIKey != "key-123" {
		t.Errorf("api key = %q, want %q", cfg.Mail.APIKey, "key-123")
	}
	if cfg.Mail.APISecret != "secret-456" {
		t.Errorf("api secret = %q, want %q", cfg.Mail.APISecret, "secret-456")
	}
	if cfg.Mail.From != "env@example.com" {
		t.Errorf("mail.from = %q, want env value", cfg.Mail.From)
	}
	if cfg.Mail.To != "oncall@example.com" {
		t.Errorf("mail.to = %q, want env value", cfg.Mail.To)
	}
	if cfg.Log.File != "from_env.log" {
		t.Errorf("log.file = %q, want env value", cfg.Log.File)
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := Default()

	cfg.History.Path = "/tmp/custom.db"
	if got := cfg.HistoryPath(); got != "/tmp/custom.db" {
		t.Errorf("HistoryPath() = %q, want explicit path", got)
	}

	cfg.History.Path = ""
	want := filepath.Join("hostwatch", "history.db")
	if got := cfg.HistoryPath(); !strings.HasSuffix(got, want) {
		t.Errorf("HistoryPath() = %q, want suffix %q", got, want)
	}
}
