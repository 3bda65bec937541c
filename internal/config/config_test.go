package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://aviationweather.gov/api/data", cfg.Wx.APIBaseURL)
	assert.Equal(t, 10, cfg.Wx.PartitionBatchSize)
	assert.True(t, cfg.Outages.Enabled)
	assert.Equal(t, "outage-ledger", cfg.Outages.LedgerKey)
	assert.Equal(t, 1000, cfg.Outages.MaxEvents)
}

func TestLoad(t *testing.T) {
	t.Run("overrides merge over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[wx]
refresh_interval_minutes = 15

[outages]
max_events = 250
`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 15, cfg.Wx.RefreshIntervalMinutes)
		assert.Equal(t, 250, cfg.Outages.MaxEvents)

		// Untouched sections keep their defaults
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "outage-ledger", cfg.Outages.LedgerKey)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoadWithFallback(t *testing.T) {
	t.Run("explicit missing path fails loudly", func(t *testing.T) {
		_, err := LoadWithFallback(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("no file anywhere falls back to defaults", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		defer os.Chdir(wd)

		cfg, err := LoadWithFallback("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestValidate(t *testing.T) {
	mutate := func(fn func(*Config)) *Config {
		cfg := DefaultConfig()
		fn(cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"zero port", mutate(func(c *Config) { c.Server.Port = 0 })},
		{"port out of range", mutate(func(c *Config) { c.Server.Port = 70000 })},
		{"bad log level", mutate(func(c *Config) { c.Logging.Level = "verbose" })},
		{"bad log format", mutate(func(c *Config) { c.Logging.Format = "xml" })},
		{"empty sqlite path", mutate(func(c *Config) { c.Storage.SQLitePath = "" })},
		{"empty api base url", mutate(func(c *Config) { c.Wx.APIBaseURL = "" })},
		{"zero request timeout", mutate(func(c *Config) { c.Wx.RequestTimeoutSeconds = 0 })},
		{"negative retries", mutate(func(c *Config) { c.Wx.MaxRetries = -1 })},
		{"zero refresh interval", mutate(func(c *Config) { c.Wx.RefreshIntervalMinutes = 0 })},
		{"zero recency window", mutate(func(c *Config) { c.Wx.RecencyWindowHours = 0 })},
		{"zero batch size", mutate(func(c *Config) { c.Wx.PartitionBatchSize = 0 })},
		{"zero cache expiry", mutate(func(c *Config) { c.Wx.CacheExpiryMinutes = 0 })},
		{"empty ledger key", mutate(func(c *Config) { c.Outages.LedgerKey = "" })},
		{"zero max events", mutate(func(c *Config) { c.Outages.MaxEvents = 0 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}

	t.Run("zero retries is allowed", func(t *testing.T) {
		cfg := mutate(func(c *Config) { c.Wx.MaxRetries = 0 })
		assert.NoError(t, cfg.Validate())
	})
}
