package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageBackend selects the session store: "redis", "sqlite" or "memory".
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"career.db"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	ContentDir string `env:"CONTENT_DIR" envDefault:"./data/scenarios"`

	// Sweep worker tuning.
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	EventMaxAge      time.Duration `env:"EVENT_MAX_AGE" envDefault:"72h"`
	TrustDecayFactor float64       `env:"TRUST_DECAY_FACTOR" envDefault:"0.98"`

	LogLevel slog.Level `env:"-"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	switch cfg.StorageBackend {
	case "redis", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q; valid values: redis, sqlite, memory", cfg.StorageBackend)
	}
	if cfg.TrustDecayFactor <= 0 || cfg.TrustDecayFactor > 1 {
		return nil, fmt.Errorf("TRUST_DECAY_FACTOR must be in (0, 1], got %v", cfg.TrustDecayFactor)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
