package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "config.json"

// Configuration holds the meeting allow-list, the notification text and the
// optional runtime settings. It is built once by Load and never mutated.
type Configuration struct {
	// Meeting allow-list and notification content (required in the file)
	MeetingApps         []string `koanf:"meetingApps"`
	NotificationTitle   string   `koanf:"notificationTitle"`
	NotificationMessage string   `koanf:"notificationMessage"`

	// Polling loop behaviour
	Monitor MonitorConfig `koanf:"monitor"`

	// Foreground application detection
	Detector DetectorConfig `koanf:"detector"`

	// Notification and deep link dispatch
	Dispatch DispatchConfig `koanf:"dispatch"`

	// Dispatch history storage
	Database DatabaseConfig `koanf:"database"`

	// Daemon process configuration
	Daemon DaemonConfig `koanf:"daemon"`

	// Web API configuration
	Web WebConfig `koanf:"web"`

	// Logging configuration
	Log LogConfig `koanf:"log"`
}

// MonitorConfig holds polling loop configuration
type MonitorConfig struct {
	PollInterval      time.Duration `koanf:"pollInterval" validate:"gte=1s"`
	MatchMode         string        `koanf:"matchMode" validate:"oneof=exact insensitive contains fuzzy"`
	DispatchMode      string        `koanf:"dispatchMode" validate:"oneof=every-tick session-start"`
	Cooldown          time.Duration `koanf:"cooldown" validate:"gte=0"`
	OnDispatchFailure string        `koanf:"onDispatchFailure" validate:"oneof=continue abort"`
	SkipWhenLocked    bool          `koanf:"skipWhenLocked"`
}

// DetectorConfig selects the foreground application detector
type DetectorConfig struct {
	Backend   string `koanf:"backend" validate:"oneof=auto x11 wayland darwin windows static"`
	StaticApp string `koanf:"staticApp"`
}

// DispatchConfig holds notifier and opener configuration
type DispatchConfig struct {
	Notifier        string        `koanf:"notifier" validate:"oneof=command beeep dbus"`
	NotifierCommand string        `koanf:"notifierCommand" validate:"required_if=Notifier command"`
	Opener          string        `koanf:"opener" validate:"oneof=command browser"`
	OpenerCommand   string        `koanf:"openerCommand" validate:"required_if=Opener command"`
	DeepLink        string        `koanf:"deepLink" validate:"required,url"`
	NoteName        string        `koanf:"noteName"`
	MaxAttempts     int           `koanf:"maxAttempts" validate:"min=1,max=10"`
	RetryInterval   time.Duration `koanf:"retryInterval" validate:"gte=0"`
	Timeout         time.Duration `koanf:"timeout" validate:"gte=0"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"` // Empty means ~/.config/meetnotes/meetnotes.db
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `koanf:"pidFile" validate:"required"`
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `koanf:"host" validate:"required"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	File  string `koanf:"file"`
}

// Default returns a Configuration with every optional setting at its default
// and an empty allow-list.
func Default() *Configuration {
	cfg := &Configuration{
		MeetingApps: []string{},
		Monitor: MonitorConfig{
			PollInterval:      5 * time.Second,
			MatchMode:         "exact",
			DispatchMode:      "every-tick",
			Cooldown:          0,
			OnDispatchFailure: "abort",
		},
		Detector: DetectorConfig{
			Backend:   "auto",
			StaticApp: "Zoom",
		},
		Dispatch: DispatchConfig{
			Notifier:        "command",
			NotifierCommand: "notify-send",
			Opener:          "command",
			OpenerCommand:   "xdg-open",
			DeepLink:        "obsidian://new",
			MaxAttempts:     1,
			RetryInterval:   500 * time.Millisecond,
			Timeout:         0,
		},
		Database: DatabaseConfig{
			Enabled: true,
			Path:    "",
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/meetnotes-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10100 + os.Getuid()%1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	switch runtime.GOOS {
	case "darwin":
		cfg.Dispatch.Notifier = "beeep"
		cfg.Dispatch.OpenerCommand = "open"
	case "windows":
		cfg.Dispatch.Notifier = "beeep"
		cfg.Dispatch.Opener = "browser"
		cfg.Dispatch.OpenerCommand = ""
		cfg.Daemon.PIDFile = "meetnotes.pid"
		cfg.Web.Port = 10100
	}

	return cfg
}

// Validate checks the configuration against its field rules
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the config
func (c *Configuration) String() string {
	return fmt.Sprintf(`Configuration:
  Meeting Apps: %s
  Notification:
    Title: %s
    Message: %s
  Monitor:
    Poll Interval: %v
    Match Mode: %s
    Dispatch Mode: %s
    Cooldown: %v
    On Dispatch Failure: %s
    Skip When Locked: %v
  Detector:
    Backend: %s
  Dispatch:
    Notifier: %s (%s)
    Opener: %s (%s)
    Deep Link: %s
    Max Attempts: %d
    Timeout: %v
  Database:
    Enabled: %v
    Path: %s
  Daemon:
    PID File: %s
  Web:
    Host: %s
    Port: %d`,
		strings.Join(c.MeetingApps, ", "),
		c.NotificationTitle,
		c.NotificationMessage,
		c.Monitor.PollInterval,
		c.Monitor.MatchMode,
		c.Monitor.DispatchMode,
		c.Monitor.Cooldown,
		c.Monitor.OnDispatchFailure,
		c.Monitor.SkipWhenLocked,
		c.Detector.Backend,
		c.Dispatch.Notifier,
		c.Dispatch.NotifierCommand,
		c.Dispatch.Opener,
		c.Dispatch.OpenerCommand,
		c.Dispatch.DeepLink,
		c.Dispatch.MaxAttempts,
		c.Dispatch.Timeout,
		c.Database.Enabled,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Web.Host,
		c.Web.Port,
	)
}
