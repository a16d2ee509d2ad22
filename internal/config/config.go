// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Storage backend selectors.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds everything the server needs to start.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"ADDR" envDefault:":8080"`

	// StorageBackend selects the store implementation: sqlite or postgres.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`

	// DBPath is the SQLite database file, used when StorageBackend is sqlite.
	DBPath string `env:"DB_PATH" envDefault:"./data/equi.db"`

	// DatabaseURL is the PostgreSQL DSN, used when StorageBackend is postgres.
	DatabaseURL string `env:"DATABASE_URL"`

	// AMQPURL enables event publishing when set; empty disables it.
	AMQPURL string `env:"AMQP_URL"`

	// AMQPExchange is the exchange ledger events are published to.
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"equi.events"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH required for sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL required for postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
