package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration options for the sync application
type Config struct {
	Toggl       TogglConfig
	OpenProject OpenProjectConfig
	Sync        SyncConfig
	Journal     JournalConfig
}

// TogglConfig holds source-side (Toggl) configuration
type TogglConfig struct {
	APIToken string `env:"TOGGL_API_TOKEN"`
	BaseURL  string `env:"TOGGL_BASE_URL"`
}

// OpenProjectConfig holds sink-side (OpenProject) configuration
type OpenProjectConfig struct {
	Host       string `env:"OPENPROJECT_HOST"`
	Scheme     string `env:"OPENPROJECT_HTTP_SCHEMA"`
	APIKey     string `env:"OPENPROJECT_API_KEY"`
	ActivityID string `env:"OPENPROJECT_DEFAULT_ACTIVITY_ID"`
	PageSize   int    `env:"OPSYNC_PAGE_SIZE"`
}

// SyncConfig holds pipeline behavior configuration
type SyncConfig struct {
	LookbackDays      int           `env:"OPSYNC_LOOKBACK_DAYS"`
	LookupConcurrency int           `env:"OPSYNC_LOOKUP_CONCURRENCY"`
	HTTPTimeout       time.Duration `env:"OPSYNC_HTTP_TIMEOUT"`
	StopAtEnd         bool          `env:"OPSYNC_STOP_AT_END"`
}

// JournalConfig holds local run-history journal configuration
type JournalConfig struct {
	Dir      string `env:"OPSYNC_JOURNAL_DIR"`
	Filename string `env:"OPSYNC_JOURNAL_FILENAME"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultJournalDir := filepath.Join(homeDir, ".opsync")

	return &Config{
		Toggl: TogglConfig{
			BaseURL: "https://api.track.toggl.com/api/v9",
		},
		OpenProject: OpenProjectConfig{
			Scheme:     "https",
			ActivityID: "1",
			PageSize:   100,
		},
		Sync: SyncConfig{
			LookbackDays:      2,
			LookupConcurrency: 4,
			HTTPTimeout:       30 * time.Second,
			StopAtEnd:         false,
		},
		Journal: JournalConfig{
			Dir:      defaultJournalDir,
			Filename: "opsync.db",
		},
	}
}

// BaseURL returns the OpenProject API v3 base URL, without a trailing slash
func (c *OpenProjectConfig) BaseURL() string {
	return c.Scheme + "://" + c.Host + "/api/v3"
}

// JournalPath returns the full path to the journal database file
func (c *Config) JournalPath() string {
	return filepath.Join(c.Journal.Dir, c.Journal.Filename)
}

// Lookback returns the fetch look-back window as a duration
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Sync.LookbackDays) * 24 * time.Hour
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Toggl configuration
	if token := os.Getenv("TOGGL_API_TOKEN"); token != "" {
		c.Toggl.APIToken = token
	}
	if base := os.Getenv("TOGGL_BASE_URL"); base != "" {
		c.Toggl.BaseURL = base
	}

	// OpenProject configuration
	if host := os.Getenv("OPENPROJECT_HOST"); host != "" {
		c.OpenProject.Host = host
	}
	if scheme := os.Getenv("OPENPROJECT_HTTP_SCHEMA"); scheme != "" {
		c.OpenProject.Scheme = scheme
	}
	if key := os.Getenv("OPENPROJECT_API_KEY"); key != "" {
		c.OpenProject.APIKey = key
	}
	if activity := os.Getenv("OPENPROJECT_DEFAULT_ACTIVITY_ID"); activity != "" {
		c.OpenProject.ActivityID = activity
	}
	if size := os.Getenv("OPSYNC_PAGE_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			c.OpenProject.PageSize = n
		}
	}

	// Sync configuration
	if days := os.Getenv("OPSYNC_LOOKBACK_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			c.Sync.LookbackDays = n
		}
	}
	if workers := os.Getenv("OPSYNC_LOOKUP_CONCURRENCY"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			c.Sync.LookupConcurrency = n
		}
	}
	if timeout := os.Getenv("OPSYNC_HTTP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Sync.HTTPTimeout = d
		}
	}
	if stopAtEnd := os.Getenv("OPSYNC_STOP_AT_END"); stopAtEnd != "" {
		if b, err := strconv.ParseBool(stopAtEnd); err == nil {
			c.Sync.StopAtEnd = b
		}
	}

	// Journal configuration
	if dir := os.Getenv("OPSYNC_JOURNAL_DIR"); dir != "" {
		c.Journal.Dir = dir
	}
	if filename := os.Getenv("OPSYNC_JOURNAL_FILENAME"); filename != "" {
		c.Journal.Filename = filename
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate Toggl configuration
	if c.Toggl.APIToken == "" {
		return &ConfigError{Field: "toggl.api_token", Message: "TOGGL_API_TOKEN must be set"}
	}
	if c.Toggl.BaseURL == "" {
		return &ConfigError{Field: "toggl.base_url", Message: "base URL cannot be empty"}
	}

	// Validate OpenProject configuration
	if c.OpenProject.Host == "" {
		return &ConfigError{Field: "openproject.host", Message: "OPENPROJECT_HOST must be set"}
	}
	if c.OpenProject.Scheme != "http" && c.OpenProject.Scheme != "https" {
		return &ConfigError{Field: "openproject.scheme", Message: "scheme must be http or https"}
	}
	if c.OpenProject.APIKey == "" {
		return &ConfigError{Field: "openproject.api_key", Message: "OPENPROJECT_API_KEY must be set"}
	}
	if c.OpenProject.ActivityID == "" {
		return &ConfigError{Field: "openproject.activity_id", Message: "activity id cannot be empty"}
	}
	if c.OpenProject.PageSize < 1 {
		return &ConfigError{Field: "openproject.page_size", Message: "page size must be positive"}
	}

	// Validate sync configuration
	if c.Sync.LookbackDays < 1 {
		return &ConfigError{Field: "sync.lookback_days", Message: "look-back window must be at least one day"}
	}
	if c.Sync.LookupConcurrency < 1 {
		return &ConfigError{Field: "sync.lookup_concurrency", Message: "lookup concurrency must be at least 1"}
	}
	if c.Sync.HTTPTimeout <= 0 {
		return &ConfigError{Field: "sync.http_timeout", Message: "HTTP timeout must be positive"}
	}

	// Validate journal configuration
	if c.Journal.Dir == "" {
		return &ConfigError{Field: "journal.dir", Message: "journal directory cannot be empty"}
	}
	if c.Journal.Filename == "" {
		return &ConfigError{Field: "journal.filename", Message: "journal filename cannot be empty"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
