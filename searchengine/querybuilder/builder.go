// Package querybuilder lowers parsed queries into parametrized SQL filter
// expressions for one entity table.
//
// Expressions reference parameters by name (":q0p0"). Names are
// q<sequence>p<n>, where sequence is the position of the query in a Create
// call, so several queries can be AND-ed in one statement without
// collisions. Correlated sub-selects use sub_table_<n> aliases. Both
// counters live in per-call state, which makes a Builder safe for
// concurrent use.
package querybuilder

import (
	"fmt"
	"strings"

	"github.com/bileto/bileto/searchengine/query"
)

// Entity describes the table a builder filters.
type Entity struct {
	Table     string
	Alias     string
	TextField string // column matched by free text
	IDField   string // column matched by #<id>; defaults to "id"
}

func (e Entity) idField() string {
	if e.IDField == "" {
		return "id"
	}
	return e.IDField
}

// Param is a named query parameter.
type Param struct {
	Name  string
	Value any
}

// Params lists parameters in registration order.
type Params []Param

// Get returns the value of the named parameter.
func (p Params) Get(name string) (any, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// Lookup indexes p by name and returns a getter over the index.
func (p Params) Lookup() func(name string) (any, bool) {
	values := make(map[string]any, len(p))
	for _, param := range p {
		values[param.Name] = param.Value
	}
	return func(name string) (any, bool) {
		v, ok := values[name]
		return v, ok
	}
}

// Select is the result of Create: the filter of one statement against the
// entity table.
type Select struct {
	Entity Entity
	Wheres []string // AND-ed, one per non-empty query
	Params Params
}

// Where returns the AND of all where expressions, or "" when there is none.
func (s *Select) Where() string {
	if len(s.Wheres) == 0 {
		return ""
	}
	parts := make([]string, len(s.Wheres))
	for i, w := range s.Wheres {
		parts[i] = "(" + w + ")"
	}
	return strings.Join(parts, " AND ")
}

// Builder lowers queries for one entity.
type Builder struct {
	entity  Entity
	mapping *Mapping
}

// New returns a builder for entity using the qualifier mapping.
func New(entity Entity, mapping *Mapping) *Builder {
	if mapping == nil {
		mapping = NewMapping()
	}
	return &Builder{entity: entity, mapping: mapping}
}

// Entity returns the entity the builder filters.
func (b *Builder) Entity() Entity {
	return b.entity
}

// Qualifiers lists the qualifier names the builder accepts.
func (b *Builder) Qualifiers() []string {
	return b.mapping.Names()
}

// callState is shared by every scope of one Create or BuildQuery call.
type callState struct {
	params    Params
	subTables int
}

// Create lowers the queries into one select. Queries are AND-ed; nil and
// empty queries are skipped but still consume their sequence number.
func (b *Builder) Create(queries ...*query.Query) (*Select, error) {
	call := &callState{}
	sel := &Select{Entity: b.entity}

	for seq, q := range queries {
		if q.IsEmpty() {
			continue
		}
		where, err := b.build(call, q, seq)
		if err != nil {
			return nil, err
		}
		sel.Wheres = append(sel.Wheres, where)
	}

	sel.Params = call.params
	return sel, nil
}

// BuildQuery lowers a single query using the given sequence number.
func (b *Builder) BuildQuery(q *query.Query, seq int) (string, Params, error) {
	if q.IsEmpty() {
		return "", nil, nil
	}
	call := &callState{}
	where, err := b.build(call, q, seq)
	if err != nil {
		return "", nil, err
	}
	return where, call.params, nil
}

func (b *Builder) build(call *callState, q *query.Query, seq int) (string, error) {
	s := &Scope{
		entity: b.entity,
		alias:  b.entity.Alias,
		seq:    seq,
		next:   new(int),
		call:   call,
	}
	return b.buildConditions(s, q.Conditions())
}

// buildConditions folds conditions left to right: AND and OR have the same
// precedence.
func (b *Builder) buildConditions(s *Scope, conds []query.Condition) (string, error) {
	var expr string
	for i, cond := range conds {
		e, err := b.buildCondition(s, cond)
		if err != nil {
			return "", err
		}
		if e == "" {
			panic(&LogicError{Message: fmt.Sprintf("condition %d (%T) produced an empty expression", i, cond)})
		}
		if i == 0 {
			expr = e
			continue
		}
		op := "AND"
		if cond.IsOr() {
			op = "OR"
		}
		expr = "(" + expr + " " + op + " " + e + ")"
	}
	return expr, nil
}

func (b *Builder) buildCondition(s *Scope, cond query.Condition) (string, error) {
	switch c := cond.(type) {
	case *query.Text:
		return b.buildText(s, c), nil
	case *query.Qualifier:
		return b.buildQualifier(s, c)
	case *query.Group:
		if c.Query.IsEmpty() {
			return "", nil
		}
		sub, err := b.buildConditions(s, c.Query.Conditions())
		if err != nil {
			return "", err
		}
		if c.IsNot() {
			return "NOT (" + sub + ")", nil
		}
		return "(" + sub + ")", nil
	default:
		return "", fmt.Errorf("unknown condition type: %T", cond)
	}
}

func (b *Builder) buildText(s *Scope, c *query.Text) string {
	exprs := make([]string, 0, len(c.Terms))
	for _, term := range c.Terms {
		if id, ok := query.ExtractID(term); ok {
			exprs = append(exprs, s.Equal(s.Field(b.entity.idField()), id, false))
		} else {
			exprs = append(exprs, s.Like(s.Field(b.entity.TextField), term, false))
		}
	}
	return Or(exprs, c.IsNot())
}

func (b *Builder) buildQualifier(s *Scope, c *query.Qualifier) (string, error) {
	handler, ok := b.mapping.Lookup(c.Name, c.Values)
	if !ok {
		return "", UnknownQualifier(c.Name, c.Values)
	}
	return handler(s, c)
}

// Or joins alternative expressions, parenthesizing lists and negations.
// Text lists are joined this way; handlers use it for value lists.
func Or(exprs []string, not bool) string {
	if len(exprs) == 0 {
		return ""
	}
	joined := strings.Join(exprs, " OR ")
	switch {
	case not:
		return "NOT (" + joined + ")"
	case len(exprs) > 1:
		return "(" + joined + ")"
	default:
		return joined
	}
}
