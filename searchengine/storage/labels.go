package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bileto/bileto/searchengine/storage/sqlbuilder"
)

// Labels reads the labels table.
type Labels struct {
	DB      *sql.DB
	Adapter Adapter
}

// FindByNames returns the names of the labels matching names, compared
// case-insensitively, in their stored casing.
func (l *Labels) FindByNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	lowered := make([]any, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
	}

	b := sqlbuilder.New(l.Adapter.PlaceholderStyle())
	stmt, err := b.Render("SELECT name FROM labels WHERE LOWER(name) IN (:names) ORDER BY id", func(name string) (any, bool) {
		return lowered, name == "names"
	})
	if err != nil {
		return nil, err
	}

	rows, err := l.DB.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found = append(found, name)
	}
	return found, rows.Err()
}
