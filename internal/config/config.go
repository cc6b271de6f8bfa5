package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"studyplan/internal/topics"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// ExportConfig controls the calendar export.
type ExportConfig struct {
	// Filename is sent in Content-Disposition.
	Filename string `yaml:"filename" json:"filename"`
	// EventMinutes is the length of each study session event.
	EventMinutes int `yaml:"event_minutes" json:"event_minutes"`
	// Alarm adds a DISPLAY alarm to each event.
	Alarm bool `yaml:"alarm" json:"alarm"`
	// AlarmMinutesBefore moves the alarm ahead of the session start.
	AlarmMinutesBefore int `yaml:"alarm_minutes_before" json:"alarm_minutes_before"`
	// UIDDomain is the domain part of every event UID.
	UIDDomain string `yaml:"uid_domain" json:"uid_domain"`
}

// StorageConfig selects where planner state is persisted.
type StorageConfig struct {
	// Driver is "json" (default) or "sqlite".
	Driver string `yaml:"driver" json:"driver"`
	// Path is the JSON file or SQLite database path.
	Path string `yaml:"path" json:"path"`
}

// NotificationsConfig selects how daily reminders are delivered.
type NotificationsConfig struct {
	// Driver is "log" (default), "webhook" or "none".
	Driver string `yaml:"driver" json:"driver"`
	// WebhookURL receives a JSON POST per reminder when Driver is "webhook".
	WebhookURL string `yaml:"webhook_url,omitempty" json:"webhook_url,omitempty"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	// File, if set, receives a rotated copy of the log.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Title is shown on the page and used as the calendar name.
	Title string `yaml:"title" json:"title"`

	// DefaultHour / DefaultMinute are the reminder time used until the user
	// picks one, and the export defaults when hour/minute are omitted.
	DefaultHour   int `yaml:"default_hour" json:"default_hour"`
	DefaultMinute int `yaml:"default_minute" json:"default_minute"`

	Export        ExportConfig        `yaml:"export" json:"export"`
	Storage       StorageConfig       `yaml:"storage" json:"storage"`
	Notifications NotificationsConfig `yaml:"notifications" json:"notifications"`
	Log           LogConfig           `yaml:"log" json:"log"`

	// Topics is the ordered plan, one topic per day.
	Topics []string `yaml:"topics" json:"topics"`
	// Quotes are shown next to today's topic.
	Quotes []string `yaml:"quotes" json:"quotes"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTitle       = "20-Day Python + AI Planner"
	defaultHour        = 9
	defaultFilename    = "20-day-python-ai.ics"
	defaultEventMins   = 30
	defaultUIDDomain   = "studyplan.local"
	defaultStoragePath = "./data/planner.json"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        defaultListen,
		Title:         defaultTitle,
		DefaultHour:   defaultHour,
		DefaultMinute: 0,
		Export: ExportConfig{
			Filename:     defaultFilename,
			EventMinutes: defaultEventMins,
			Alarm:        true,
			UIDDomain:    defaultUIDDomain,
		},
		Storage: StorageConfig{
			Driver: "json",
			Path:   defaultStoragePath,
		},
		Notifications: NotificationsConfig{Driver: "log"},
		Log:           LogConfig{Level: "info"},
		Topics:        slices.Clone(topics.Default),
		Quotes:        slices.Clone(topics.Quotes),
		BasicAuth:     nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.DefaultHour < 0 || c.DefaultHour > 23 {
		c.DefaultHour = defaultHour
	}
	if c.DefaultMinute < 0 || c.DefaultMinute > 59 {
		c.DefaultMinute = 0
	}

	if c.Export.Filename == "" {
		c.Export.Filename = defaultFilename
	}
	if c.Export.EventMinutes <= 0 {
		c.Export.EventMinutes = defaultEventMins
	}
	if c.Export.AlarmMinutesBefore < 0 {
		c.Export.AlarmMinutesBefore = 0
	}
	if c.Export.UIDDomain == "" {
		c.Export.UIDDomain = defaultUIDDomain
	}

	switch c.Storage.Driver {
	case "json", "sqlite":
		// ok
	default:
		// Unknown or empty driver; fall back to the JSON file store.
		c.Storage.Driver = "json"
	}
	if c.Storage.Path == "" {
		if c.Storage.Driver == "sqlite" {
			c.Storage.Path = "./data/planner.db"
		} else {
			c.Storage.Path = defaultStoragePath
		}
	}

	switch c.Notifications.Driver {
	case "log", "webhook", "none":
		// ok
	default:
		c.Notifications.Driver = "log"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if len(c.Topics) == 0 {
		c.Topics = slices.Clone(topics.Default)
	}
	if c.Quotes == nil {
		c.Quotes = slices.Clone(topics.Quotes)
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML over DefaultConfig, so omitted keys keep their defaults
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	// Left empty so Normalize picks the path for the configured driver.
	cfg.Storage.Path = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, ".studyplan-config-*.tmp")
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory and a rename, leaving the file with 0600 permissions. The parent
// directory is created with 0700 if missing.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
