// Package postgres runs the search engine on PostgreSQL, in a dedicated
// schema pinned through search_path. Connections go through pgx by default;
// DriverPQ selects lib/pq instead.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/bileto/bileto/searchengine/storage"
	"github.com/bileto/bileto/searchengine/storage/sqlbuilder"
)

const (
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

type Adapter struct {
	DSN        string
	Schema     string // used as dedicated schema via search_path
	DriverName string
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema, DriverName: DriverPgx}
}

func NewWithDriver(dsn, schema, driver string) *Adapter {
	if driver == "" {
		driver = DriverPgx
	}
	return &Adapter{DSN: dsn, Schema: schema, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderDollar }

func (a *Adapter) DatabaseID() string { return "postgres:" + a.Schema }

func (a *Adapter) Close() error { return nil }

func (a *Adapter) SQL() storage.SQL { return SQLTemplates }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

func (a *Adapter) searchPath() string {
	return fmt.Sprintf("%s,public", quoteIdent(a.Schema))
}

func (a *Adapter) ensureSchema(ctx context.Context, db *sql.DB) error {
	if a.Schema == "" || !schemaNameRe.MatchString(a.Schema) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", a.Schema, schemaNameRe.String())
	}
	_, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema))
	return err
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	// 1) Connect without search_path to ensure schema exists
	db0, err := a.open(false)
	if err != nil {
		return nil, err
	}
	if err := db0.PingContext(ctx); err != nil {
		_ = db0.Close()
		return nil, err
	}
	if err := a.ensureSchema(ctx, db0); err != nil {
		_ = db0.Close()
		return nil, err
	}
	_ = db0.Close()

	// 2) Connect with search_path pinned to the schema
	db, err := a.open(true)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) open(pinned bool) (*sql.DB, error) {
	if a.DriverName == DriverPQ {
		dsn := a.DSN
		if pinned {
			dsn = withRuntimeParam(dsn, "search_path", a.searchPath())
		}
		return sql.Open(DriverPQ, dsn)
	}

	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if pinned {
		// Include public as a fallback for built-ins; schema is first.
		if cfg.RuntimeParams == nil {
			cfg.RuntimeParams = make(map[string]string)
		}
		cfg.RuntimeParams["search_path"] = a.searchPath()
	}
	return stdlib.OpenDB(*cfg), nil
}

// withRuntimeParam adds a startup parameter to a URL or key=value DSN.
func withRuntimeParam(dsn, key, value string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err == nil {
			q := u.Query()
			q.Set(key, value)
			u.RawQuery = q.Encode()
			return u.String()
		}
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return strings.TrimSpace(dsn + " " + key + "='" + escaped + "'")
}

func (a *Adapter) Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	return storage.RecordVersion(ctx, db, a)
}

var SQLTemplates = storage.SQL{
	GetMeta: "SELECT value FROM meta WHERE key = $1",
	SetMeta: "INSERT INTO meta(key,value) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
}
