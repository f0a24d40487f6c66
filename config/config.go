/*
Package config loads server configuration from the environment.

A .env file in the working directory is honored (local dev convenience);
real environment variables win over it. Variables use the ROOMBOOK_ prefix:

  ROOMBOOK_PORT               HTTP port                        (8080)
  ROOMBOOK_DATA_DIR           data directory for the file store (./data)
  ROOMBOOK_STORE              file | sqlite                    (file)
  ROOMBOOK_SQLITE_PATH        sqlite database path             (<data>/roombook.db)
  ROOMBOOK_AMQP_URL           broker URL; empty disables AMQP confirmations
  ROOMBOOK_AMQP_EXCHANGE      confirmation exchange            (roombook.events)
  ROOMBOOK_CANCEL_CUTOFF_MIN  cancellation cutoff in minutes   (30)
  ROOMBOOK_DAILY_CAP_HOURS    per-user daily cap in hours      (2)

cmd/server flags override PORT, DATA_DIR, and STORE.
*/
package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "ROOMBOOK"

// Config is the resolved server configuration.
type Config struct {
	Port            int    `envconfig:"PORT" default:"8080"`
	DataDir         string `envconfig:"DATA_DIR" default:"./data"`
	Store           string `envconfig:"STORE" default:"file"`
	SQLitePath      string `envconfig:"SQLITE_PATH"`
	AMQPURL         string `envconfig:"AMQP_URL"`
	AMQPExchange    string `envconfig:"AMQP_EXCHANGE" default:"roombook.events"`
	CancelCutoffMin int    `envconfig:"CANCEL_CUTOFF_MIN" default:"30"`
	DailyCapHours   int    `envconfig:"DAILY_CAP_HOURS" default:"2"`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "roombook.db")
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Store != "file" && c.Store != "sqlite" {
		return fmt.Errorf("unknown store backend %q (want file or sqlite)", c.Store)
	}
	if c.CancelCutoffMin < 0 {
		return fmt.Errorf("cancel cutoff must not be negative")
	}
	if c.DailyCapHours < 1 {
		return fmt.Errorf("daily cap must be at least 1 hour")
	}
	return nil
}
