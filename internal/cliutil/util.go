package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/internal/config"
	"github.com/bileto/bileto/searchengine"
	"github.com/bileto/bileto/searchengine/query"
	"github.com/bileto/bileto/searchengine/storage"
	"github.com/bileto/bileto/searchengine/storage/postgres"
	"github.com/bileto/bileto/searchengine/storage/sqlite"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatPretty, FormatJSON:
		return OutputFormat(s), nil
	case "":
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected pretty or json)", s)
	}
}

func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes header and rows aligned in columns.
func PrintTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRow := func(cols []string) {
		for i, col := range cols {
			if i > 0 {
				_, _ = fmt.Fprint(tw, "\t")
			}
			_, _ = fmt.Fprint(tw, col)
		}
		_, _ = fmt.Fprintln(tw)
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return tw.Flush()
}

// ParseQuery parses an optional query flag; the empty string is no query.
func ParseQuery(s string) (*query.Query, error) {
	if s == "" {
		return nil, nil
	}
	return searchengine.ParseQuery(s)
}

// NewAdapter returns the storage adapter selected by db.
func NewAdapter(db config.DatabaseConfig) (storage.Adapter, error) {
	switch db.Backend {
	case string(storage.BackendSQLite):
		return sqlite.NewWithDriver(db.SQLite.Path, db.SQLite.Driver), nil
	case string(storage.BackendPostgres):
		return postgres.NewWithDriver(db.Postgres.DSN, db.Postgres.Schema, db.Postgres.Driver), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", db.Backend)
	}
}

// Session is an open searcher plus the registry its metrics go to.
type Session struct {
	Searcher *searchengine.Searcher

	registry    *prometheus.Registry
	dumpMetrics bool
}

// Open connects to the database configured in env.
func Open(ctx context.Context, env *cliopt.Env) (*Session, error) {
	adapter, err := NewAdapter(env.Config.Database)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	s, err := searchengine.Open(ctx, adapter, searchengine.Options{
		Logger:     env.Logger,
		Registerer: reg,
	})
	if err != nil {
		return nil, err
	}
	return &Session{Searcher: s, registry: reg, dumpMetrics: env.Config.Metrics.Enabled}, nil
}

// Close prints the collected metrics to w when enabled and closes the
// database.
func (s *Session) Close(w io.Writer) error {
	if s.dumpMetrics {
		if err := WriteMetrics(w, s.registry); err != nil {
			_ = s.Searcher.Close()
			return err
		}
	}
	return s.Searcher.Close()
}

// WriteMetrics writes every family of g in the Prometheus text format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func FormatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return "#" + strconv.FormatInt(*id, 10)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
