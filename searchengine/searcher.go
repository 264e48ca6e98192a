// Package searchengine runs Bileto searches: it lowers the access scope and
// the user query of a request through the entity builders and executes the
// result, sorted and paginated, against a storage adapter.
package searchengine

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bileto/bileto/internal/logging"
	"github.com/bileto/bileto/searchengine/contract"
	"github.com/bileto/bileto/searchengine/query"
	"github.com/bileto/bileto/searchengine/querybuilder"
	"github.com/bileto/bileto/searchengine/storage"
	"github.com/bileto/bileto/searchengine/storage/sqlbuilder"
	"github.com/bileto/bileto/searchengine/ticket"
)

// Options configures a Searcher.
type Options struct {
	Logger *slog.Logger
	// Registerer receives the search metrics; nil keeps them unregistered.
	Registerer prometheus.Registerer
	// Now is the clock contract statuses are evaluated against.
	Now func() time.Time
}

// Searcher executes searches against one database.
type Searcher struct {
	adapter storage.Adapter
	db      *sql.DB
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Open connects to the database of adapter.
func Open(ctx context.Context, adapter storage.Adapter, opts Options) (*Searcher, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	return NewSearcher(db, adapter, opts), nil
}

// NewSearcher returns a Searcher over an open database.
func NewSearcher(db *sql.DB, adapter storage.Adapter, opts Options) *Searcher {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Searcher{
		adapter: adapter,
		db:      db,
		logger:  logging.Default(opts.Logger).With("component", "searcher", "db", adapter.DatabaseID()),
		metrics: NewMetrics(opts.Registerer),
		now:     now,
	}
}

// Close closes the database.
func (s *Searcher) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return Wrap(ErrIO, "close database", err)
		}
	}
	return s.adapter.Close()
}

// DB returns the underlying database.
func (s *Searcher) DB() *sql.DB {
	return s.db
}

// Metrics returns the collectors of the searcher.
func (s *Searcher) Metrics() *Metrics {
	return s.metrics
}

// Migrate creates the schema.
func (s *Searcher) Migrate(ctx context.Context) error {
	if err := s.adapter.Migrate(ctx, s.db); err != nil {
		return Wrap(ErrSchema, "migrate", err)
	}
	s.logger.Info("schema migrated", "version", storage.SchemaVersion)
	return nil
}

// Labels returns the label lookup used to normalize ticket filters.
func (s *Searcher) Labels() *storage.Labels {
	return &storage.Labels{DB: s.db, Adapter: s.adapter}
}

// TicketFilter reduces q to a ticket quick-search filter, or returns nil
// when q cannot be represented as one.
func (s *Searcher) TicketFilter(ctx context.Context, q *query.Query) (*ticket.Filter, error) {
	f, err := ticket.FromQuery(ctx, q, s.Labels())
	if err != nil {
		var ve *querybuilder.ValueError
		if errors.As(err, &ve) {
			return nil, QueryError("tickets", err)
		}
		return nil, Wrap(ErrSQL, "find labels", err)
	}
	return f, nil
}

// Tickets returns one page of the tickets matching req.
func (s *Searcher) Tickets(ctx context.Context, req Request) (*Page[Ticket], error) {
	return search(ctx, s, ticketSource, ticket.NewBuilder(req.ActorID), req)
}

// CountTickets returns the number of tickets matching req.
func (s *Searcher) CountTickets(ctx context.Context, req Request) (int, error) {
	return count(ctx, s, ticketSource, ticket.NewBuilder(req.ActorID), req)
}

// Contracts returns one page of the contracts matching req.
func (s *Searcher) Contracts(ctx context.Context, req Request) (*Page[Contract], error) {
	return search(ctx, s, contractSource, contract.NewBuilder(s.now()), req)
}

// CountContracts returns the number of contracts matching req.
func (s *Searcher) CountContracts(ctx context.Context, req Request) (int, error) {
	return count(ctx, s, contractSource, contract.NewBuilder(s.now()), req)
}

// source describes how rows of an entity are selected and scanned.
type source[T any] struct {
	name    string
	columns []string
	sorts   []SortOption
	scan    func(rows *sql.Rows) (T, error)
}

var ticketSource = source[Ticket]{
	name: "tickets",
	columns: []string{
		"id", "title", "type", "status", "urgency", "impact", "priority",
		"organization_id", "requester_id", "assignee_id", "team_id", "created_at", "updated_at",
	},
	sorts: TicketSorts,
	scan: func(rows *sql.Rows) (Ticket, error) {
		var t Ticket
		var requester, assignee, team sql.NullInt64
		var created, updated int64
		err := rows.Scan(&t.ID, &t.Title, &t.Type, &t.Status, &t.Urgency, &t.Impact, &t.Priority,
			&t.OrganizationID, &requester, &assignee, &team, &created, &updated)
		t.RequesterID = nullableID(requester)
		t.AssigneeID = nullableID(assignee)
		t.TeamID = nullableID(team)
		t.CreatedAt = time.Unix(created, 0).UTC()
		t.UpdatedAt = time.Unix(updated, 0).UTC()
		return t, err
	},
}

var contractSource = source[Contract]{
	name:    "contracts",
	columns: []string{"id", "name", "organization_id", "start_at", "end_at"},
	sorts:   ContractSorts,
	scan: func(rows *sql.Rows) (Contract, error) {
		var c Contract
		var start, end int64
		err := rows.Scan(&c.ID, &c.Name, &c.OrganizationID, &start, &end)
		c.StartAt = time.Unix(start, 0).UTC()
		c.EndAt = time.Unix(end, 0).UTC()
		return c, err
	},
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// statement renders "<head> FROM <table> <alias> [WHERE ...]" for sel.
func (s *Searcher) statement(b *sqlbuilder.Builder, head string, sel *querybuilder.Select) (string, error) {
	e := sel.Entity
	stmt := head + " FROM " + e.Table + " " + e.Alias
	if where := sel.Where(); where != "" {
		stmt += " WHERE " + where
	}
	return b.Render(stmt, sel.Params.Lookup())
}

func (s *Searcher) countSelect(ctx context.Context, sel *querybuilder.Select) (int, error) {
	b := sqlbuilder.New(s.adapter.PlaceholderStyle())
	stmt, err := s.statement(b, "SELECT COUNT(*)", sel)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func fetch[T any](ctx context.Context, s *Searcher, src source[T], sel *querybuilder.Select, sort SortOption, page, perPage int) ([]T, error) {
	alias := sel.Entity.Alias
	cols := make([]string, len(src.columns))
	for i, c := range src.columns {
		cols[i] = alias + "." + c
	}

	b := sqlbuilder.New(s.adapter.PlaceholderStyle())
	stmt, err := s.statement(b, "SELECT "+strings.Join(cols, ", "), sel)
	if err != nil {
		return nil, err
	}
	stmt += " ORDER BY " + sort.OrderBy(alias)
	stmt += " LIMIT " + b.Arg(perPage) + " OFFSET " + b.Arg((page-1)*perPage)
	s.logger.Debug("search", "entity", src.name, "sql", stmt, "args", len(b.Args()))

	rows, err := s.db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0, perPage)
	for rows.Next() {
		item, err := src.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func search[T any](ctx context.Context, s *Searcher, src source[T], b *querybuilder.Builder, req Request) (result *Page[T], err error) {
	start := time.Now()
	defer func() {
		s.observe(src.name, "search", start, err)
		if result != nil {
			s.metrics.SearchResults.WithLabelValues(src.name).Observe(float64(result.Total))
		}
	}()

	sel, err := b.Create(req.Scope, req.Query)
	if err != nil {
		return nil, QueryError(src.name, err)
	}

	page, perPage := req.pagination()
	sort := ResolveSort(src.sorts, req.Sort)
	result = &Page[T]{Page: page, PerPage: perPage, Sort: sort.Key}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := fetch(gctx, s, src, sel, sort, page, perPage)
		result.Items = items
		return err
	})
	g.Go(func() error {
		n, err := s.countSelect(gctx, sel)
		result.Total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &Error{Kind: ErrSQL, Message: "search", Entity: src.name, Cause: err}
	}
	return result, nil
}

func count[T any](ctx context.Context, s *Searcher, src source[T], b *querybuilder.Builder, req Request) (n int, err error) {
	start := time.Now()
	defer func() { s.observe(src.name, "count", start, err) }()

	sel, err := b.Create(req.Scope, req.Query)
	if err != nil {
		return 0, QueryError(src.name, err)
	}
	n, err = s.countSelect(ctx, sel)
	if err != nil {
		return 0, &Error{Kind: ErrSQL, Message: "count", Entity: src.name, Cause: err}
	}
	return n, nil
}

func (s *Searcher) observe(entity, op string, start time.Time, err error) {
	out := outcome(err)
	s.metrics.SearchesTotal.WithLabelValues(entity, op, out).Inc()
	s.metrics.SearchLatency.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
	if out == OutcomeError {
		s.logger.Error("search failed", "entity", entity, "op", op, "err", err)
	}
}
