// Package contract lowers contract queries and reduces them to quick-search
// filters.
package contract

import (
	"strings"
	"time"

	"github.com/bileto/bileto/searchengine/query"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
)

// Entity is the contracts table.
var Entity = qb.Entity{Table: "contracts", Alias: "c", TextField: "name"}

// Statuses a contract goes through, relative to the current time.
var Statuses = []string{"coming", "ongoing", "finished"}

func IsStatus(v string) bool {
	for _, s := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

var orgs = qb.Relation{Owner: "organization_id", Table: "organizations", Key: "id"}

// NewBuilder returns the contract query builder. Statuses are evaluated at
// now.
func NewBuilder(now time.Time) *qb.Builder {
	h := &handlers{now: now.Unix()}
	m := qb.NewMapping().
		Register("status", h.status).
		Register("org", h.org)
	for _, status := range Statuses {
		m.Register("status:"+status, h.single(status))
	}
	return qb.New(Entity, m)
}

type handlers struct {
	now int64
}

func (h *handlers) statusExpr(s *qb.Scope, status string) string {
	switch status {
	case "coming":
		return s.Field("start_at") + " > " + s.Param(h.now)
	case "ongoing":
		return "(" + s.Field("start_at") + " <= " + s.Param(h.now) + " AND " + s.Field("end_at") + " >= " + s.Param(h.now) + ")"
	default:
		return s.Field("end_at") + " < " + s.Param(h.now)
	}
}

func (h *handlers) single(status string) qb.Handler {
	return func(s *qb.Scope, c *query.Qualifier) (string, error) {
		return qb.Or([]string{h.statusExpr(s, status)}, c.IsNot()), nil
	}
}

func (h *handlers) status(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return "", qb.InvalidValue(c.Name, "", "a contract always has a status")
	}
	exprs := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		v = strings.ToLower(v)
		if !IsStatus(v) {
			return "", qb.InvalidValue(c.Name, v, "unknown status")
		}
		exprs = append(exprs, h.statusExpr(s, v))
	}
	return qb.Or(exprs, c.IsNot()), nil
}

func (h *handlers) org(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return "", qb.InvalidValue(c.Name, "", "a contract always has an organization")
	}
	exprs := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if id, ok := query.ExtractID(v); ok {
			exprs = append(exprs, s.Equal(s.Field("organization_id"), id, false))
			continue
		}
		expr, err := s.ManyToMany(orgs, false, func(sub *qb.Scope) (string, error) {
			return sub.Like(sub.Field("name"), v, false), nil
		})
		if err != nil {
			return "", err
		}
		exprs = append(exprs, expr)
	}
	return qb.Or(exprs, c.IsNot()), nil
}
