package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.CoinGecko.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, 10, cfg.WatchlistCapacity)
	assert.Equal(t, 90*24*time.Hour, cfg.HistoryRetention)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COINGECKO_API_KEY", "demo-key")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("WATCHLIST_CAPACITY", "5")
	t.Setenv("ALLOWED_ORIGINS", " https://dash.example.com ,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "demo-key", cfg.CoinGecko.APIKey)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.WatchlistCapacity)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Origins())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero capacity", "WATCHLIST_CAPACITY", "0"},
		{"zero rate limit", "RATE_LIMIT_PER_MINUTE", "0"},
		{"malformed duration", "CACHE_TTL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
