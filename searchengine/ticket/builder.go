package ticket

import (
	"strings"

	"github.com/bileto/bileto/searchengine/query"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
)

// Entity is the tickets table.
var Entity = qb.Entity{Table: "tickets", Alias: "t", TextField: "title"}

// Me is the actor reference resolved to the current actor.
const Me = "@me"

var (
	observers = qb.Relation{Table: "ticket_observers", Key: "ticket_id"}
	members   = qb.Relation{Owner: "team_id", Table: "team_users", Key: "team_id"}
	labels    = qb.Relation{Table: "ticket_labels", Key: "ticket_id", Target: "labels", TargetKey: "label_id"}
	contracts = qb.Relation{Table: "contract_tickets", Key: "ticket_id", Target: "contracts", TargetKey: "contract_id"}
	teams     = qb.Relation{Owner: "team_id", Table: "teams", Key: "id"}
	orgs      = qb.Relation{Owner: "organization_id", Table: "organizations", Key: "id"}
)

func users(column string) qb.Relation {
	return qb.Relation{Owner: column, Table: "users", Key: "id"}
}

// NewBuilder returns the ticket query builder. actorID is the user @me
// resolves to; 0 means there is no current actor and @me is rejected.
func NewBuilder(actorID int64) *qb.Builder {
	h := &handlers{actor: actorID}
	m := qb.NewMapping().
		Register("status:open", h.statusGroup(OpenStatuses)).
		Register("status:finished", h.statusGroup(FinishedStatuses)).
		Register("status", h.status).
		Register("type", h.enum("type", IsType)).
		Register("urgency", h.enum("urgency", IsWeight)).
		Register("impact", h.enum("impact", IsWeight)).
		Register("priority", h.enum("priority", IsWeight)).
		Register("assignee", h.actorQualifier("assignee_id")).
		Register("requester", h.actorQualifier("requester_id")).
		Register("involves", h.involves).
		Register("team", h.team).
		Register("org", h.org).
		Register("label", h.label).
		Register("contract", h.contract)
	return qb.New(Entity, m)
}

type handlers struct {
	actor int64
}

func (h *handlers) statusGroup(statuses []string) qb.Handler {
	return func(s *qb.Scope, c *query.Qualifier) (string, error) {
		return s.Equal(s.Field("status"), statuses, c.IsNot()), nil
	}
}

func (h *handlers) status(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return "", qb.InvalidValue(c.Name, "", "a ticket always has a status")
	}
	var statuses []string
	for _, v := range c.Values {
		v = strings.ToLower(v)
		if v != "open" && v != "finished" && !IsStatus(v) {
			return "", qb.InvalidValue(c.Name, v, "unknown status")
		}
		statuses = append(statuses, ExpandStatus(v)...)
	}
	return s.Equal(s.Field("status"), statuses, c.IsNot()), nil
}

func (h *handlers) enum(column string, valid func(string) bool) qb.Handler {
	return func(s *qb.Scope, c *query.Qualifier) (string, error) {
		if c.IsNull() {
			return "", qb.InvalidValue(c.Name, "", "a ticket always has a %s", column)
		}
		values := make([]string, len(c.Values))
		for i, v := range c.Values {
			values[i] = strings.ToLower(v)
			if !valid(values[i]) {
				return "", qb.InvalidValue(c.Name, v, "unknown %s", column)
			}
		}
		return s.Equal(s.Field(column), values, c.IsNot()), nil
	}
}

// userMatch matches column against one actor reference: @me, #<id>, or a
// fragment of a user name or email.
func (h *handlers) userMatch(s *qb.Scope, qualifier, column, value string) (string, error) {
	if value == Me {
		if h.actor == 0 {
			return "", qb.InvalidValue(qualifier, value, "there is no current actor")
		}
		return s.Equal(s.Field(column), h.actor, false), nil
	}
	if id, ok := query.ExtractID(value); ok {
		return s.Equal(s.Field(column), id, false), nil
	}
	return s.ManyToMany(users(column), false, func(sub *qb.Scope) (string, error) {
		return qb.Or([]string{
			sub.Like(sub.Field("name"), value, false),
			sub.Like(sub.Field("email"), value, false),
		}, false), nil
	})
}

func (h *handlers) actorQualifier(column string) qb.Handler {
	return func(s *qb.Scope, c *query.Qualifier) (string, error) {
		if c.IsNull() {
			return s.Null(s.Field(column), c.IsNot()), nil
		}
		exprs := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			expr, err := h.userMatch(s, c.Name, column, v)
			if err != nil {
				return "", err
			}
			exprs = append(exprs, expr)
		}
		return qb.Or(exprs, c.IsNot()), nil
	}
}

// involves matches tickets the user requested, is assigned to, observes, or
// whose assigned team they belong to.
func (h *handlers) involves(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return "", qb.InvalidValue(c.Name, "", "involves requires a user")
	}
	exprs := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		var parts []string
		for _, column := range []string{"requester_id", "assignee_id"} {
			expr, err := h.userMatch(s, c.Name, column, v)
			if err != nil {
				return "", err
			}
			parts = append(parts, expr)
		}
		for _, rel := range []qb.Relation{observers, members} {
			expr, err := s.ManyToMany(rel, false, func(sub *qb.Scope) (string, error) {
				return h.userMatch(sub, c.Name, "user_id", v)
			})
			if err != nil {
				return "", err
			}
			parts = append(parts, expr)
		}
		exprs = append(exprs, qb.Or(parts, false))
	}
	return qb.Or(exprs, c.IsNot()), nil
}

// named matches an #<id> against column, or a name fragment through rel.
func named(s *qb.Scope, column string, rel qb.Relation, value string) (string, error) {
	if id, ok := query.ExtractID(value); ok {
		return s.Equal(s.Field(column), id, false), nil
	}
	return s.ManyToMany(rel, false, func(sub *qb.Scope) (string, error) {
		return sub.Like(sub.Field("name"), value, false), nil
	})
}

func (h *handlers) team(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return s.Null(s.Field("team_id"), c.IsNot()), nil
	}
	exprs := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		expr, err := named(s, "team_id", teams, v)
		if err != nil {
			return "", err
		}
		exprs = append(exprs, expr)
	}
	return qb.Or(exprs, c.IsNot()), nil
}

func (h *handlers) org(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return "", qb.InvalidValue(c.Name, "", "a ticket always has an organization")
	}
	exprs := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		expr, err := named(s, "organization_id", orgs, v)
		if err != nil {
			return "", err
		}
		exprs = append(exprs, expr)
	}
	return qb.Or(exprs, c.IsNot()), nil
}

// label matches label names exactly, ignoring case.
func (h *handlers) label(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return s.Empty(labels, c.IsNot()), nil
	}
	return s.ManyToMany(labels, c.IsNot(), func(sub *qb.Scope) (string, error) {
		var ids []int64
		var names []string
		for _, v := range c.Values {
			if id, ok := query.ExtractID(v); ok {
				ids = append(ids, id)
			} else {
				names = append(names, strings.ToLower(v))
			}
		}
		var exprs []string
		if len(ids) > 0 {
			exprs = append(exprs, sub.Equal(sub.Field("id"), ids, false))
		}
		if len(names) > 0 {
			exprs = append(exprs, sub.Equal("LOWER("+sub.Field("name")+")", names, false))
		}
		return qb.Or(exprs, false), nil
	})
}

func (h *handlers) contract(s *qb.Scope, c *query.Qualifier) (string, error) {
	if c.IsNull() {
		return s.Empty(contracts, c.IsNot()), nil
	}
	return s.ManyToMany(contracts, c.IsNot(), func(sub *qb.Scope) (string, error) {
		exprs := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			if id, ok := query.ExtractID(v); ok {
				exprs = append(exprs, sub.Equal(sub.Field("id"), id, false))
			} else {
				exprs = append(exprs, sub.Like(sub.Field("name"), v, false))
			}
		}
		return qb.Or(exprs, false), nil
	})
}
