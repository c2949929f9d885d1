package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Capture configuration
	Capture CaptureConfig `mapstructure:"capture"`

	// Adapter configuration
	Adapter AdapterConfig `mapstructure:"adapter"`

	// Daemon configuration
	Daemon DaemonConfig `mapstructure:"daemon"`

	// Web server configuration
	Web WebConfig `mapstructure:"web"`

	// Logging configuration
	Log LogConfig `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to SQLite database file
}

// CaptureConfig holds screenshot capture behavior configuration
type CaptureConfig struct {
	Interval    time.Duration `mapstructure:"interval"`     // How often to capture the focused window
	MinInterval time.Duration `mapstructure:"min_interval"` // Minimum allowed capture interval
	MaxInterval time.Duration `mapstructure:"max_interval"` // Maximum allowed capture interval
	QueueSize   int           `mapstructure:"queue_size"`   // Capacity of the notification queue
}

// AdapterConfig holds platform adapter configuration
type AdapterConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"` // How often the adapter checks the focused window
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `mapstructure:"pid_file"` // Path to PID file for daemon management
	LogFile string `mapstructure:"log_file"` // Where a detached daemon writes its logs; empty keeps stderr
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `mapstructure:"host"` // Host to bind web server to
	Port int    `mapstructure:"port"` // Port for web server
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // Log level (debug, info, warn, error)
	Pretty bool   `mapstructure:"pretty"` // Human-readable console output instead of JSON
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/intime/intime.db
		},
		Capture: CaptureConfig{
			Interval:    10 * time.Second,
			MinInterval: 1 * time.Second,
			MaxInterval: 10 * time.Minute,
			QueueSize:   1024,
		},
		Adapter: AdapterConfig{
			PollInterval: 500 * time.Millisecond,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/intime-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/intime-%d.log", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Capture.Interval < c.Capture.MinInterval {
		return fmt.Errorf("capture interval (%v) cannot be less than minimum (%v)",
			c.Capture.Interval, c.Capture.MinInterval)
	}

	if c.Capture.Interval > c.Capture.MaxInterval {
		return fmt.Errorf("capture interval (%v) cannot be greater than maximum (%v)",
			c.Capture.Interval, c.Capture.MaxInterval)
	}

	if c.Capture.QueueSize < 1 {
		return fmt.Errorf("queue size must be positive, got %d", c.Capture.QueueSize)
	}

	if c.Adapter.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("adapter poll interval must be at least 100ms, got %v", c.Adapter.PollInterval)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

// SetCaptureInterval sets the capture interval with validation
func (c *Config) SetCaptureInterval(interval time.Duration) error {
	if interval < c.Capture.MinInterval {
		return fmt.Errorf("capture interval cannot be less than %v", c.Capture.MinInterval)
	}
	if interval > c.Capture.MaxInterval {
		return fmt.Errorf("capture interval cannot be greater than %v", c.Capture.MaxInterval)
	}
	c.Capture.Interval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// Address returns the host:port the web server binds to
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Capture:
    Interval: %v
    Min Interval: %v
    Max Interval: %v
    Queue Size: %d
  Adapter:
    Poll Interval: %v
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Host: %s
    Port: %d
  Log:
    Level: %s
    Pretty: %v`,
		c.Database.Path,
		c.Capture.Interval,
		c.Capture.MinInterval,
		c.Capture.MaxInterval,
		c.Capture.QueueSize,
		c.Adapter.PollInterval,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Host,
		c.Web.Port,
		c.Log.Level,
		c.Log.Pretty,
	)
}
