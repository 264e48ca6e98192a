package cliopt

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bileto/bileto/internal/config"
	"github.com/bileto/bileto/internal/logging"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
// Empty values leave the config file and environment settings in place.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	ConfigPath     string
	Backend        string
	SQLitePath     string
	PostgresDSN    string
	PostgresSchema string
	Driver         string
	LogLevel       string
	LogFormat      string
	Metrics        bool
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.ConfigPath, "config", g.ConfigPath, "YAML config file")
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")
	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file")
	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema")
	fs.StringVar(&g.Driver, "driver", g.Driver, "database/sql driver: sqlite|sqlite3 for sqlite, pgx|postgres for postgres")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&g.LogFormat, "log-format", g.LogFormat, "log format: text|json")
	fs.BoolVar(&g.Metrics, "metrics", g.Metrics, "print search metrics after the command")
}

// Config loads the configuration with the flags applied on top.
func (g GlobalOptions) Config() (*config.Config, error) {
	return config.Load(g.ConfigPath, g.apply)
}

func (g GlobalOptions) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Database.Backend, g.Backend)
	set(&cfg.Database.SQLite.Path, g.SQLitePath)
	set(&cfg.Database.Postgres.DSN, g.PostgresDSN)
	set(&cfg.Database.Postgres.Schema, g.PostgresSchema)
	if cfg.Database.Backend == "postgres" {
		set(&cfg.Database.Postgres.Driver, g.Driver)
	} else {
		set(&cfg.Database.SQLite.Driver, g.Driver)
	}
	set(&cfg.Logging.Level, g.LogLevel)
	set(&cfg.Logging.Format, g.LogFormat)
	if g.Metrics {
		cfg.Metrics.Enabled = true
	}
}

// Env is what every command runs with. The root command fills Config and
// Logger before any subcommand runs.
type Env struct {
	Options GlobalOptions
	Config  *config.Config
	Logger  *slog.Logger
}

// Load resolves the configuration and builds the logger.
func (e *Env) Load(stderr io.Writer) error {
	cfg, err := e.Options.Config()
	if err != nil {
		return err
	}
	e.Config = cfg
	e.Logger = logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// Context bounds parent by the configured database timeout.
func (e *Env) Context(parent context.Context) (context.Context, context.CancelFunc) {
	if e.Config == nil || e.Config.Database.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, e.Config.Database.Timeout)
}
