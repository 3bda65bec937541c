package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server  ServerConfig  `toml:"server"`  // HTTP server settings
	Logging LoggingConfig `toml:"logging"` // Application logging settings
	Storage StorageConfig `toml:"storage"` // Data persistence settings
	Wx      WxConfig      `toml:"wx"`      // Weather data fetching settings
	Outages OutagesConfig `toml:"outages"` // Maintenance outage tracking settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the server
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file holding the outage ledger
}

// WxConfig contains weather data fetching configuration
type WxConfig struct {
	APIBaseURL             string `toml:"api_base_url"`             // Base URL of the aviation weather API (e.g., https://aviationweather.gov/api/data)
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`  // HTTP timeout for individual API requests
	MaxRetries             int    `toml:"max_retries"`              // Number of retries per request on failure
	RefreshIntervalMinutes int    `toml:"refresh_interval_minutes"` // How often to refresh all observations
	RecencyWindowHours     int    `toml:"recency_window_hours"`     // How far back to ask the provider for reports
	PartitionBatchSize     int    `toml:"partition_batch_size"`     // How many state partitions to fetch concurrently
	CacheExpiryMinutes     int    `toml:"cache_expiry_minutes"`     // How long cached observations stay fresh
}

// OutagesConfig contains maintenance outage tracking configuration
type OutagesConfig struct {
	Enabled   bool   `toml:"enabled"`    // Enable outage tracking on each refresh cycle
	LedgerKey string `toml:"ledger_key"` // Storage key under which the outage ledger blob is persisted
	MaxEvents int    `toml:"max_events"` // Retention cap on the outage event log (oldest dropped first)
}

// DefaultConfig returns a configuration populated with defaults for every section
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			Host:             "127.0.0.1",
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 30,
			IdleTimeoutSecs:  60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			SQLitePath: "data/metarboard.db",
		},
		Wx: DefaultWxConfig(),
		Outages: OutagesConfig{
			Enabled:   true,
			LedgerKey: "outage-ledger",
			MaxEvents: 1000,
		},
	}
}

// DefaultWxConfig returns the default weather fetching configuration
func DefaultWxConfig() WxConfig {
	return WxConfig{
		APIBaseURL:             "https://aviationweather.gov/api/data",
		RequestTimeoutSeconds:  10,
		MaxRetries:             2,
		RefreshIntervalMinutes: 60,
		RecencyWindowHours:     3,
		PartitionBatchSize:     10,
		CacheExpiryMinutes:     75,
	}
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file over the defaults
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// If an explicit path was provided, use it and fail loudly if missing
	if preferredPath != "" {
		return Load(preferredPath)
	}

	candidates := []string{
		filepath.Join("configs", "config.toml"),
		"config.toml",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}

	// No config file found anywhere - run on defaults
	return DefaultConfig(), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}

	// Validate storage config
	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage sqlite_path cannot be empty")
	}

	// Validate weather config
	if err := c.ValidateWx(); err != nil {
		return err
	}

	// Validate outage config
	if c.Outages.LedgerKey == "" {
		return fmt.Errorf("outages ledger_key cannot be empty")
	}
	if c.Outages.MaxEvents <= 0 {
		return fmt.Errorf("outages max_events must be greater than 0")
	}

	return nil
}

// ValidateWx validates the weather fetching configuration
func (c *Config) ValidateWx() error {
	if c.Wx.APIBaseURL == "" {
		return fmt.Errorf("wx api_base_url cannot be empty")
	}

	if c.Wx.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("wx request_timeout_seconds must be greater than 0")
	}

	if c.Wx.MaxRetries < 0 {
		return fmt.Errorf("wx max_retries must be 0 or greater")
	}

	if c.Wx.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("wx refresh_interval_minutes must be greater than 0")
	}

	if c.Wx.RecencyWindowHours <= 0 {
		return fmt.Errorf("wx recency_window_hours must be greater than 0")
	}

	if c.Wx.PartitionBatchSize <= 0 {
		return fmt.Errorf("wx partition_batch_size must be greater than 0")
	}

	if c.Wx.CacheExpiryMinutes <= 0 {
		return fmt.Errorf("wx cache_expiry_minutes must be greater than 0")
	}

	return nil
}
