package querybuilder

import (
	"fmt"
	"strings"
)

// Scope is handed to qualifier handlers. It knows the alias fields are
// qualified with and registers parameters in the namespace of the query
// being lowered.
type Scope struct {
	entity Entity
	alias  string
	seq    int
	next   *int // parameter counter, shared with sub-scopes
	call   *callState
}

// Entity returns the entity of the builder.
func (s *Scope) Entity() Entity {
	return s.entity
}

// Alias returns the table alias of this scope.
func (s *Scope) Alias() string {
	return s.alias
}

// Field qualifies a column with the scope alias.
func (s *Scope) Field(column string) string {
	return s.alias + "." + column
}

// Param registers a parameter and returns its placeholder.
func (s *Scope) Param(value any) string {
	name := fmt.Sprintf("q%dp%d", s.seq, *s.next)
	*s.next++
	s.call.params = append(s.call.params, Param{Name: name, Value: value})
	return ":" + name
}

// Equal compares field with value. A nil value tests for NULL, a slice uses
// IN, anything else uses "=". not inverts the test.
func (s *Scope) Equal(field string, value any, not bool) string {
	if value == nil {
		return s.Null(field, not)
	}
	if list, ok := asList(value); ok {
		if len(list) == 0 {
			return ""
		}
		if not {
			return fmt.Sprintf("%s NOT IN (%s)", field, s.Param(list))
		}
		return fmt.Sprintf("%s IN (%s)", field, s.Param(list))
	}
	if not {
		return fmt.Sprintf("%s <> %s", field, s.Param(value))
	}
	return fmt.Sprintf("%s = %s", field, s.Param(value))
}

// Null tests field for NULL.
func (s *Scope) Null(field string, not bool) string {
	if not {
		return field + " IS NOT NULL"
	}
	return field + " IS NULL"
}

// Like matches value case-insensitively anywhere in field. LIKE wildcards in
// value are escaped.
func (s *Scope) Like(field, value string, not bool) string {
	pattern := "%" + escapeLike(strings.ToLower(value)) + "%"
	op := "LIKE"
	if not {
		op = "NOT LIKE"
	}
	return fmt.Sprintf(`LOWER(%s) %s %s ESCAPE '\'`, field, op, s.Param(pattern))
}

// Relation links the entity to another table for sub-selects.
//
// Rows of Table are matched on Table.Key = <entity>.Owner. When Target is
// set, Target.id = Table.TargetKey is joined and the sub-scope filters on
// Target; otherwise it filters on Table.
type Relation struct {
	Owner     string // column of the entity; defaults to its id field
	Table     string
	Key       string
	Target    string
	TargetKey string
}

func (s *Scope) owner(rel Relation) string {
	if rel.Owner == "" {
		return s.Field(s.entity.idField())
	}
	return s.Field(rel.Owner)
}

func (s *Scope) subAlias() string {
	alias := fmt.Sprintf("sub_table_%d", s.call.subTables)
	s.call.subTables++
	return alias
}

// Empty tests whether the entity has no related row in rel.Table.
func (s *Scope) Empty(rel Relation, not bool) string {
	alias := s.subAlias()
	exists := fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s.%s = %s)", rel.Table, alias, alias, rel.Key, s.owner(rel))
	if not {
		return exists
	}
	return "NOT " + exists
}

// ManyToMany tests whether the entity is related to a row matching the
// expression returned by build. build receives a sub-scope whose alias is
// fresh, so nested sub-selects never clash; parameters stay in the current
// namespace.
func (s *Scope) ManyToMany(rel Relation, not bool, build func(sub *Scope) (string, error)) (string, error) {
	joinAlias := s.subAlias()
	from := rel.Table + " " + joinAlias

	sub := &Scope{entity: s.entity, alias: joinAlias, seq: s.seq, next: s.next, call: s.call}
	if rel.Target != "" {
		targetAlias := s.subAlias()
		from += fmt.Sprintf(" INNER JOIN %s %s ON %s.id = %s.%s", rel.Target, targetAlias, targetAlias, joinAlias, rel.TargetKey)
		sub.alias = targetAlias
	}

	expr, err := build(sub)
	if err != nil {
		return "", err
	}
	if expr == "" {
		panic(&LogicError{Message: fmt.Sprintf("sub-select on %s produced an empty expression", rel.Table)})
	}

	op := "IN"
	if not {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (SELECT %s.%s FROM %s WHERE %s)", s.owner(rel), op, joinAlias, rel.Key, from, expr), nil
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

func escapeLike(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
