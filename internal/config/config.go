// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds server configuration
type Config struct {
	Host              string        `env:"CARDGAME_HOST"`
	Port              int           `env:"CARDGAME_PORT" envDefault:"8080"`
	Storage           string        `env:"CARDGAME_STORAGE" envDefault:"memory"`
	RedisURL          string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath        string        `env:"CARDGAME_SQLITE_PATH" envDefault:"cardgame.db"`
	PostgresDSN       string        `env:"CARDGAME_POSTGRES_DSN"`
	LogLevel          string        `env:"CARDGAME_LOG_LEVEL" envDefault:"info"`
	EloK              int           `env:"CARDGAME_ELO_K" envDefault:"32"`
	LiveSearchTimeout time.Duration `env:"CARDGAME_LIVE_SEARCH_TIMEOUT" envDefault:"60s"`
	RankingRefresh    time.Duration `env:"CARDGAME_RANKING_REFRESH" envDefault:"5m"`
	Season            int           `env:"CARDGAME_SEASON" envDefault:"1"`
	SessionDuration   time.Duration `env:"CARDGAME_SESSION_DURATION" envDefault:"24h"`
}

// Load reads an optional .env file, then parses the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from environment variables and validates it
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return errors.New("CARDGAME_POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.EloK <= 0 {
		return fmt.Errorf("CARDGAME_ELO_K must be positive, got %d", c.EloK)
	}
	if c.Season < 1 {
		return fmt.Errorf("CARDGAME_SEASON must be at least 1, got %d", c.Season)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts LogLevel to a slog.Level
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("CARDGAME_LOG_LEVEL: %w", err)
	}
	return level, nil
}
