// Package sqlite runs the search engine on SQLite. The pure-Go
// modernc.org/sqlite driver ("sqlite") is the default; the cgo
// mattn/go-sqlite3 driver ("sqlite3") can be selected with NewWithDriver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/bileto/bileto/searchengine/storage"
	"github.com/bileto/bileto/searchengine/storage/sqlbuilder"
)

const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverModernc}
}

func NewWithDriver(path, driver string) *Adapter {
	if driver == "" {
		driver = DriverModernc
	}
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend {
	return storage.BackendSQLite
}

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) DatabaseID() string {
	return "sqlite:" + a.Path
}

// dsn adds the busy timeout and foreign keys options in the syntax of the
// selected driver.
func (a *Adapter) dsn() string {
	var opts string
	switch a.DriverName {
	case DriverMattn:
		opts = "_busy_timeout=5000&_foreign_keys=on"
	default:
		opts = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	if strings.Contains(a.Path, "?") {
		return a.Path + "&" + opts
	}
	if !strings.HasPrefix(a.Path, "file:") {
		return "file:" + a.Path + "?" + opts
	}
	return a.Path + "?" + opts
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.DriverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) SQL() storage.SQL {
	return SQLTemplates
}

func (a *Adapter) Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	return storage.RecordVersion(ctx, db, a)
}

var SQLTemplates = storage.SQL{
	GetMeta: "SELECT value FROM meta WHERE key = ?1",
	SetMeta: "INSERT INTO meta(key,value) VALUES(?1,?2) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
}
