package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "price-time", cfg.Book.Engine)
	assert.Equal(t, 1000, cfg.Book.HistoryCapacity)
	assert.Equal(t, 5, cfg.Book.VWAPDepth)
	assert.True(t, cfg.Book.DefaultBandWidth.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "reject", cfg.Book.LeftoverPolicy)
	assert.Equal(t, "INFO", cfg.Logger.Level)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Journal.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOK_VWAP_DEPTH", "10")
	t.Setenv("BOOK_DEFAULT_BAND_WIDTH", "0.5")
	t.Setenv("BOOK_LEFTOVER_POLICY", "RETURN")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOURNAL_ENABLED", "true")
	t.Setenv("JOURNAL_PATH", "/tmp/journal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Book.VWAPDepth)
	assert.True(t, cfg.Book.DefaultBandWidth.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, "return", cfg.Book.LeftoverPolicy)
	assert.Equal(t, "DEBUG", cfg.Logger.Level)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/tmp/journal", cfg.Journal.Path)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BOOK_HISTORY_CAPACITY", "lots")
	t.Setenv("BOOK_DEFAULT_BAND_WIDTH", "wide")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Book.HistoryCapacity)
	assert.True(t, cfg.Book.DefaultBandWidth.Equal(decimal.NewFromInt(1)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }, "PORT"},
		{"zero history", func(c *Config) { c.Book.HistoryCapacity = 0 }, "BOOK_HISTORY_CAPACITY"},
		{"negative vwap depth", func(c *Config) { c.Book.VWAPDepth = -1 }, "BOOK_VWAP_DEPTH"},
		{"zero band width", func(c *Config) { c.Book.DefaultBandWidth = decimal.Zero }, "BOOK_DEFAULT_BAND_WIDTH"},
		{"unknown leftover policy", func(c *Config) { c.Book.LeftoverPolicy = "rest" }, "BOOK_LEFTOVER_POLICY"},
		{"trade limits inverted", func(c *Config) { c.API.MaxTradeLimit = 1; c.API.DefaultTradeLimit = 5 }, "MAX_TRADE_LIMIT"},
		{"bad log level", func(c *Config) { c.Logger.Level = "TRACE" }, "LOG_LEVEL"},
		{"journal without path", func(c *Config) { c.Journal.Enabled = true; c.Journal.Path = "" }, "JOURNAL_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
