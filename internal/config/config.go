package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures environment driven configuration for the clinic service.
// The bootstrap admin credentials are consumed only when no administrator
// account exists yet.
type Config struct {
	HTTPPort       int           `env:"VETCLINIC_HTTP_PORT" envDefault:"8080"`
	SQLiteDSN      string        `env:"VETCLINIC_SQLITE_DSN" envDefault:"file:vetclinic.db?_foreign_keys=on"`
	SessionTTL     time.Duration `env:"VETCLINIC_SESSION_TTL" envDefault:"24h"`
	AdminEmail     string        `env:"VETCLINIC_ADMIN_EMAIL"`
	AdminPassword  string        `env:"VETCLINIC_ADMIN_PASSWORD"`
	LoginRateRPS   float64       `env:"VETCLINIC_LOGIN_RATE_RPS" envDefault:"1"`
	LoginRateBurst int           `env:"VETCLINIC_LOGIN_RATE_BURST" envDefault:"5"`
	LogLevel       string        `env:"VETCLINIC_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.HTTPPort <= 0 {
		return Config{}, fmt.Errorf("VETCLINIC_HTTP_PORT must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("VETCLINIC_SESSION_TTL must be positive")
	}
	if cfg.LoginRateRPS <= 0 {
		return Config{}, fmt.Errorf("VETCLINIC_LOGIN_RATE_RPS must be positive")
	}
	if cfg.LoginRateBurst <= 0 {
		return Config{}, fmt.Errorf("VETCLINIC_LOGIN_RATE_BURST must be positive")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SlogLevel resolves the configured log level name.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("VETCLINIC_LOG_LEVEL must be one of debug, info, warn, error")
}
