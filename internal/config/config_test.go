package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
	if cfg.Capture.Interval != 10*time.Second {
		t.Errorf("Capture.Interval = %v, want 10s", cfg.Capture.Interval)
	}
	if cfg.Capture.QueueSize != 1024 {
		t.Errorf("Capture.QueueSize = %d, want 1024", cfg.Capture.QueueSize)
	}
	if cfg.Adapter.PollInterval != 500*time.Millisecond {
		t.Errorf("Adapter.PollInterval = %v, want 500ms", cfg.Adapter.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "interval below minimum",
			mutate:  func(c *Config) { c.Capture.Interval = 500 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "interval above maximum",
			mutate:  func(c *Config) { c.Capture.Interval = time.Hour },
			wantErr: true,
		},
		{
			name:    "interval at minimum",
			mutate:  func(c *Config) { c.Capture.Interval = c.Capture.MinInterval },
			wantErr: false,
		},
		{
			name:    "interval at maximum",
			mutate:  func(c *Config) { c.Capture.Interval = c.Capture.MaxInterval },
			wantErr: false,
		},
		{
			name:    "zero queue size",
			mutate:  func(c *Config) { c.Capture.QueueSize = 0 },
			wantErr: true,
		},
		{
			name:    "poll interval too small",
			mutate:  func(c *Config) { c.Adapter.PollInterval = 50 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Web.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Web.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Web.Host = "" },
			wantErr: true,
		},
		{
			name:    "empty pid file",
			mutate:  func(c *Config) { c.Daemon.PIDFile = "" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetCaptureInterval(t *testing.T) {
	cfg := Default()

	if err := cfg.SetCaptureInterval(30 * time.Second); err != nil {
		t.Errorf("SetCaptureInterval(30s) = %v, want nil", err)
	}
	if cfg.Capture.Interval != 30*time.Second {
		t.Errorf("Capture.Interval = %v, want 30s", cfg.Capture.Interval)
	}

	if err := cfg.SetCaptureInterval(100 * time.Millisecond); err == nil {
		t.Error("SetCaptureInterval(100ms) accepted an interval below the minimum")
	}
	if err := cfg.SetCaptureInterval(time.Hour); err == nil {
		t.Error("SetCaptureInterval(1h) accepted an interval above the maximum")
	}
	if cfg.Capture.Interval != 30*time.Second {
		t.Errorf("rejected intervals mutated config: %v", cfg.Capture.Interval)
	}
}

func TestSetWebPort(t *testing.T) {
	cfg := Default()

	if err := cfg.SetWebPort(9090); err != nil {
		t.Errorf("SetWebPort(9090) = %v, want nil", err)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("Web.Port = %d, want 9090", cfg.Web.Port)
	}

	for _, port := range []int{0, -1, 65536} {
		if err := cfg.SetWebPort(port); err == nil {
			t.Errorf("SetWebPort(%d) accepted an invalid port", port)
		}
	}
}

func TestAddress(t *testing.T) {
	cfg := Default()
	cfg.Web.Host = "0.0.0.0"
	cfg.Web.Port = 9999
	if got := cfg.Address(); got != "0.0.0.0:9999" {
		t.Errorf("Address() = %s, want 0.0.0.0:9999", got)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[capture]
interval = "30s"
queue_size = 64

[web]
port = 9191

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Capture.Interval != 30*time.Second {
		t.Errorf("Capture.Interval = %v, want 30s", cfg.Capture.Interval)
	}
	if cfg.Capture.QueueSize != 64 {
		t.Errorf("Capture.QueueSize = %d, want 64", cfg.Capture.QueueSize)
	}
	if cfg.Web.Port != 9191 {
		t.Errorf("Web.Port = %d, want 9191", cfg.Web.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}

	// fields absent from the file keep their defaults
	if cfg.Web.Host != "localhost" {
		t.Errorf("Web.Host = %s, want localhost", cfg.Web.Host)
	}
	if cfg.Adapter.PollInterval != 500*time.Millisecond {
		t.Errorf("Adapter.PollInterval = %v, want 500ms", cfg.Adapter.PollInterval)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() accepted a missing explicit config file")
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[capture]
interval = "10ms"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() accepted a capture interval below the minimum")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[capture]
interval = "30s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("INTIME_CAPTURE_INTERVAL", "45s")
	t.Setenv("INTIME_WEB_PORT", "7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Capture.Interval != 45*time.Second {
		t.Errorf("Capture.Interval = %v, want env override 45s", cfg.Capture.Interval)
	}
	if cfg.Web.Port != 7777 {
		t.Errorf("Web.Port = %d, want env override 7777", cfg.Web.Port)
	}
}
