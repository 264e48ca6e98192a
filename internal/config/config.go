// Package config loads the configuration of the Bileto search tools from a
// YAML file with BILETO_* environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Backend  string         `yaml:"backend"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Timeout  time.Duration  `yaml:"timeout"`
}

type SQLiteConfig struct {
	Path   string `yaml:"path"`
	Driver string `yaml:"driver"` // sqlite (modernc) or sqlite3 (mattn)
}

type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
	Driver string `yaml:"driver"` // pgx or postgres (lib/pq)
}

// SearchConfig holds the defaults of search requests.
type SearchConfig struct {
	ActorID int64  `yaml:"actorId"`
	Scope   string `yaml:"scope"`
	PerPage int    `yaml:"perPage"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the dump of search metrics after a command.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and then overrides, in order, before validating the result.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Backend: "sqlite",
			SQLite:  SQLiteConfig{Path: "bileto.db", Driver: "sqlite"},
			Postgres: PostgresConfig{
				Schema: "bileto",
				Driver: "pgx",
			},
			Timeout: 30 * time.Second,
		},
		Search:  SearchConfig{PerPage: 25},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database.postgres.dsn is required")
		}
	default:
		return fmt.Errorf("unknown database backend %q (expected sqlite or postgres)", c.Database.Backend)
	}
	if c.Search.PerPage < 0 {
		return fmt.Errorf("search.perPage must not be negative")
	}
	return nil
}

// applyEnvOverrides reads BILETO_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BILETO_DATABASE_BACKEND"); v != "" {
		cfg.Database.Backend = v
	}
	if v := os.Getenv("BILETO_SQLITE_PATH"); v != "" {
		cfg.Database.SQLite.Path = v
	}
	if v := os.Getenv("BILETO_SQLITE_DRIVER"); v != "" {
		cfg.Database.SQLite.Driver = v
	}
	if v := os.Getenv("BILETO_POSTGRES_DSN"); v != "" {
		cfg.Database.Postgres.DSN = v
	}
	if v := os.Getenv("BILETO_POSTGRES_SCHEMA"); v != "" {
		cfg.Database.Postgres.Schema = v
	}
	if v := os.Getenv("BILETO_POSTGRES_DRIVER"); v != "" {
		cfg.Database.Postgres.Driver = v
	}
	if v := os.Getenv("BILETO_DATABASE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BILETO_DATABASE_TIMEOUT: %w", err)
		}
		cfg.Database.Timeout = d
	}
	if v := os.Getenv("BILETO_ACTOR_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BILETO_ACTOR_ID: %w", err)
		}
		cfg.Search.ActorID = id
	}
	if v := os.Getenv("BILETO_SCOPE"); v != "" {
		cfg.Search.Scope = v
	}
	if v := os.Getenv("BILETO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BILETO_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("BILETO_METRICS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BILETO_METRICS: %w", err)
		}
		cfg.Metrics.Enabled = enabled
	}
	return nil
}
