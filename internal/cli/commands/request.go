package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/internal/cliutil"
	"github.com/bileto/bileto/searchengine"
)

const (
	entityTickets   = "tickets"
	entityContracts = "contracts"
)

var entities = []string{entityTickets, entityContracts}

// entityArgs accepts exactly one entity name.
var entityArgs = cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)

// requestFlags are the flags shared by search and count.
type requestFlags struct {
	query   string
	scope   string
	actor   int64
	sort    string
	page    int
	perPage int
}

func (f *requestFlags) bind(cmd *cobra.Command, paged bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.query, "query", "q", "", "search query")
	fs.StringVar(&f.scope, "scope", "", "access scope query (default from config)")
	fs.Int64Var(&f.actor, "actor", 0, "id of the user @me resolves to (default from config)")
	if paged {
		fs.StringVar(&f.sort, "sort", "", "sort key")
		fs.IntVar(&f.page, "page", 1, "page number")
		fs.IntVar(&f.perPage, "per-page", 0, "results per page (default from config)")
	}
}

// request builds the search request, falling back to the search defaults of
// the configuration.
func (f *requestFlags) request(env *cliopt.Env) (searchengine.Request, error) {
	defaults := env.Config.Search
	req := searchengine.Request{
		ActorID: f.actor,
		Sort:    f.sort,
		Page:    f.page,
		PerPage: f.perPage,
	}
	if req.ActorID == 0 {
		req.ActorID = defaults.ActorID
	}
	if req.PerPage == 0 {
		req.PerPage = defaults.PerPage
	}

	scope := f.scope
	if scope == "" {
		scope = defaults.Scope
	}
	var err error
	if req.Scope, err = cliutil.ParseQuery(scope); err != nil {
		return req, fmt.Errorf("scope: %w", err)
	}
	if req.Query, err = cliutil.ParseQuery(f.query); err != nil {
		return req, err
	}
	return req, nil
}
