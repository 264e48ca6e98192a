// Package storage abstracts the databases the search engine runs against.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bileto/bileto/searchengine/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// SchemaVersion is stored in the meta table by Migrate.
const SchemaVersion = "1"

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	// DatabaseID names the database for logs.
	DatabaseID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// Migrate creates the Bileto tables. It is idempotent.
	Migrate(ctx context.Context, db *sql.DB) error

	SQL() SQL
}

// SQL holds the statements whose syntax differs between backends.
type SQL struct {
	GetMeta string
	SetMeta string
}

// Version returns the schema version recorded by Migrate, or "" when the
// database has not been migrated.
func Version(ctx context.Context, db *sql.DB, a Adapter) (string, error) {
	var version string
	err := db.QueryRowContext(ctx, a.SQL().GetMeta, "bileto_schema_version").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return version, nil
}

// RecordVersion stores SchemaVersion in the meta table.
func RecordVersion(ctx context.Context, db *sql.DB, a Adapter) error {
	_, err := db.ExecContext(ctx, a.SQL().SetMeta, "bileto_schema_version", SchemaVersion)
	return err
}
