// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (storage, analyzer) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the PhishGuard API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorageDriver selects the durable store backend: redis, postgres or memory.
	// The memory driver loses all data on restart and exists for local
	// development and tests.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"redis"`

	// Key-Value store (Redis driver)
	RedisURL string `env:"REDIS_URL"`

	// Relational store (PostgreSQL driver, single JSONB collection table)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	// Only consulted by the postgres driver.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// SessionSecret signs API access tokens (HS256). Must be at least 32 bytes.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// External analysis provider (Gemini). When the key is empty the server
	// falls back to the built-in heuristic analyzer.
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	GeminiModel    string `env:"GEMINI_MODEL"    envDefault:"gemini-2.5-flash"`
	GeminiEndpoint string `env:"GEMINI_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// It fails fast if the selected storage driver is missing its connection URL,
// so misconfiguration surfaces at startup rather than on first request.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	switch cfg.StorageDriver {
	case StorageDriverRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("config: REDIS_URL is required when STORAGE_DRIVER=redis")
		}
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case StorageDriverMemory:
		// No connection settings needed.
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q (want redis, postgres or memory)", cfg.StorageDriver)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins configured via EXTRA_ORIGINS
// (comma-separated). Used in production alongside the app's own domains.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}

	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
