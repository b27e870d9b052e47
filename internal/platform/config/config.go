// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. For local development,
'.env.local' and '.env' files are loaded first via 'joho/godotenv'; variables that
are already set in the process environment always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotenvFiles are loaded in order; earlier files take precedence.
var dotenvFiles = []string{".env.local", ".env"}

// # Configuration Schema

// Config holds all runtime configuration for the review API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	//
	// DatabaseURL takes precedence. When it is empty, the DSN is composed from
	// the discrete DB_* settings below.
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort      int    `env:"DB_PORT"     envDefault:"5432"`
	DBName      string `env:"DB_NAME"     envDefault:"book_review"`
	DBUser      string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"postgres"`

	// Pool sizing. DBMaxConns also bounds concurrent submissions.
	DBMaxConns         int32         `env:"DB_MAX_CONNS"         envDefault:"25"`
	DBMinConns         int32         `env:"DB_MIN_CONNS"         envDefault:"2"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`

	// AutoMigrate applies the embedded schema migrations during startup.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Key-Value Cache (Redis). Optional: the catalog cache is disabled when empty.
	RedisURL        string        `env:"REDIS_URL"`
	RedisPoolSize   int           `env:"REDIS_POOL_SIZE"   envDefault:"10"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"24h"`

	// Review ingestion
	ResolveMaxAttempts int           `env:"RESOLVE_MAX_ATTEMPTS" envDefault:"3"`
	RatingMin          int           `env:"RATING_MIN"           envDefault:"1"`
	RatingMax          int           `env:"RATING_MAX"           envDefault:"5"`
	SubmitTimeout      time.Duration `env:"SUBMIT_TIMEOUT"       envDefault:"10s"`

	// Cross-Origin Resource Sharing (production only; development allows any origin)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads optional dotenv files and parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Missing dotenv files are expected outside local development.
	for _, file := range dotenvFiles {
		_ = godotenv.Load(file)
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.RatingMin > c.RatingMax {
		errs = append(errs, fmt.Errorf("RATING_MIN (%d) must not exceed RATING_MAX (%d)", c.RatingMin, c.RatingMax))
	}
	if c.ResolveMaxAttempts < 1 {
		errs = append(errs, errors.New("RESOLVE_MAX_ATTEMPTS must be at least 1"))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be at least 1"))
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) must be between 0 and DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	if c.SubmitTimeout < 0 {
		errs = append(errs, errors.New("SUBMIT_TIMEOUT must not be negative"))
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	return dsn.String()
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowsOrigin reports whether a browser origin may call the API in production.
func (c *Config) AllowsOrigin(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}
