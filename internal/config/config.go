// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's environment-driven settings
type Config struct {
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"1777"`

	// StorageType selects the backend: memory, redis or sqlite
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/idlempire.db"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// SecureCookies marks session cookies Secure; enable behind TLS
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
