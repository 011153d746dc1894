package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT" envDefault:"8080" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL   string `env:"DATABASE_URL,required" validate:"required"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	SessionSecret     string        `env:"SESSION_SECRET,required" validate:"required,min=32"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"12h" validate:"min=1m"`
	RememberTTL       time.Duration `env:"REMEMBER_TTL" envDefault:"720h" validate:"gtefield=SessionTTL"`
	SessionReapSpec   string        `env:"SESSION_REAP_SPEC" envDefault:"@every 10m" validate:"required"`
	CookieName        string        `env:"COOKIE_NAME" envDefault:"notekeeper_session" validate:"required"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"true"`
	MinPasswordLength int           `env:"MIN_PASSWORD_LENGTH" envDefault:"8" validate:"min=1,max=72"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12" validate:"min=4,max=31"`
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, fills in variables that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
