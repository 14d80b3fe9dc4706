package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the service configuration, read from the environment
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`

	CoinGecko CoinGeckoConfig `envconfig:"COINGECKO"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Logging   LoggingConfig   `envconfig:"LOG"`

	DBPath             string        `envconfig:"DB_PATH" default:"crypto_dashboard.db"`
	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`
	AllowedOrigins     string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	WatchlistCapacity     int           `envconfig:"WATCHLIST_CAPACITY" default:"10"`
	WatchlistSyncInterval time.Duration `envconfig:"WATCHLIST_SYNC_INTERVAL" default:"15m"`
	HistoryRetention      time.Duration `envconfig:"HISTORY_RETENTION" default:"2160h"`
	StreamInterval        time.Duration `envconfig:"STREAM_INTERVAL" default:"10s"`
}

// CoinGeckoConfig configures the market data provider (COINGECKO_*)
type CoinGeckoConfig struct {
	BaseURL string        `envconfig:"API_URL" default:"https://api.coingecko.com/api/v3"`
	APIKey  string        `envconfig:"API_KEY"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

// RedisConfig configures the cache and rate limiter backend (REDIS_*)
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// LoggingConfig configures the structured logger (LOG_*)
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	if c.WatchlistCapacity < 1 {
		return errors.New("WATCHLIST_CAPACITY must be at least 1")
	}
	if c.RateLimitPerMinute < 1 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// Origins returns ALLOWED_ORIGINS as a list
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
