// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file
is honoured when present so developers do not have to export secrets by hand.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token issuer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/rendezvous/internal/platform/constants"
)

// Supported user store backends.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

var (
	// ErrSigningKeyMissing is returned when TOKEN_KEY is absent.
	ErrSigningKeyMissing = errors.New("config: TOKEN_KEY is not set")

	// ErrSigningKeyTooShort is returned when TOKEN_KEY is below the security floor.
	ErrSigningKeyTooShort = fmt.Errorf("config: TOKEN_KEY must be at least %d characters", constants.MinSigningKeyLength)
)

// # Configuration Schema

// Config holds all runtime configuration for the Rendezvous API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the user store backend ("postgres" or "memory").
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Empty disables login throttling.
	RedisURL string `env:"REDIS_URL"`

	// Session token signing
	TokenKey    string        `env:"TOKEN_KEY"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"    envDefault:"168h"`
	TokenIssuer string        `env:"TOKEN_ISSUER" envDefault:"rendezvous"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200,https://localhost:4200"`
}

// # Configuration Loading

// Load reads an optional .env file, parses environment variables into a
// [Config] struct and validates the result.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse(env.Options{})
}

// Parse maps environment variables to a [Config] using the given options and
// validates it. Tests pass an explicit Environment map.
func Parse(options env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that must hold before startup. The signing key must be present and
// at least [constants.MinSigningKeyLength] characters long.
func (c *Config) Validate() error {
	if c.TokenKey == "" {
		return ErrSigningKeyMissing
	}
	if utf8.RuneCountInString(c.TokenKey) < constants.MinSigningKeyLength {
		return ErrSigningKeyTooShort
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	return nil
}

// SigningKey returns the token signing key as raw bytes.
func (c *Config) SigningKey() []byte {
	return []byte(c.TokenKey)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowedOrigin reports whether origin is in the configured CORS allow-list.
func (c *Config) AllowedOrigin(origin string) bool {
	for _, allowed := range c.CORSOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}
