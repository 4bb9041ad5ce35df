// Package config loads server settings from the environment.
//
// A .env file in the working directory is applied first (development);
// real environment variables always win.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Stats backends accepted by STATS_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendValkey = "valkey"
)

// Config is the full server configuration.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFormat is "console" or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	// LogFile enables a rotating file sink next to stdout.
	LogFile string `env:"LOG_FILE"`

	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret    string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	CookieName   string `env:"COOKIE_NAME" envDefault:"lotmdle_player"`
	Production   bool   `env:"PRODUCTION" envDefault:"false"`

	RosterFile string `env:"ROSTER_FILE"`
	MaxGuesses int    `env:"MAX_GUESSES" envDefault:"20"`

	// Live sessions unused for SessionIdleTTL are dropped every SessionSweepEvery.
	SessionIdleTTL    time.Duration `env:"SESSION_IDLE_TTL" envDefault:"24h"`
	SessionSweepEvery time.Duration `env:"SESSION_SWEEP_EVERY" envDefault:"10m"`

	StatsBackend       string `env:"STATS_BACKEND" envDefault:"sqlite"`
	DBPath             string `env:"DB_PATH" envDefault:"./data/app.db"`
	ValkeyAddr         string `env:"VALKEY_ADDR" envDefault:"localhost:6379"`
	ValkeyPassword     string `env:"VALKEY_PASSWORD"`
	ValkeyPrefix       string `env:"VALKEY_PREFIX" envDefault:"lotmdle"`
	ValkeyDisableCache bool   `env:"VALKEY_DISABLE_CACHE" envDefault:"true"`
}

// Load applies .env (if present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the current environment without touching .env.
func Parse() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.StatsBackend = strings.ToLower(strings.TrimSpace(c.StatsBackend))
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.StatsBackend {
	case BackendMemory, BackendSQLite, BackendValkey:
	default:
		return fmt.Errorf("STATS_BACKEND: unknown backend %q", c.StatsBackend)
	}
	if c.MaxGuesses <= 0 {
		return fmt.Errorf("MAX_GUESSES must be positive, got %d", c.MaxGuesses)
	}
	if c.Production && c.JWTSecret == "dev_secret_change_me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}
