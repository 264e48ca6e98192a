package query

import (
	"regexp"
	"strconv"
)

// Condition is one predicate of a Query: *Text, *Qualifier or *Group.
type Condition interface {
	// IsNot reports whether the condition is negated.
	IsNot() bool
	// IsOr reports whether the condition is joined to the previous one with
	// OR. It is meaningless on the first condition of a query.
	IsOr() bool
	// IsAnd is the opposite of IsOr.
	IsAnd() bool
	isCondition()
}

// Flags holds the negation and combinator shared by all condition kinds.
type Flags struct {
	Not bool
	Or  bool
}

func (f Flags) IsNot() bool { return f.Not }
func (f Flags) IsOr() bool  { return f.Or }
func (f Flags) IsAnd() bool { return !f.Or }

// Text matches free text. Each term is either a text fragment or an #<id>
// reference; terms are alternatives.
type Text struct {
	Flags
	Terms []string
}

func (*Text) isCondition() {}

// Qualifier is a name:value[,value...] condition. A nil Values slice is the
// null value produced by no:<name> and has:<name>.
type Qualifier struct {
	Flags
	Name   string
	Values []string
}

func (*Qualifier) isCondition() {}

// IsNull reports whether the qualifier carries no value.
func (q *Qualifier) IsNull() bool {
	return q.Values == nil
}

// Group is a parenthesized sub-query.
type Group struct {
	Flags
	Query *Query
}

func (*Group) isCondition() {}

// Query is an ordered list of conditions together with the string it was
// parsed from.
type Query struct {
	str        string
	conditions []Condition
}

// New returns an empty query labelled with str.
func New(str string) *Query {
	return &Query{str: str}
}

// FromString parses a textual query. The empty string yields a query with no
// conditions, which matches everything.
func FromString(input string) (*Query, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{input: input, tokens: tokens}
	q, err := p.parse()
	if err != nil {
		return nil, err
	}
	q.str = input
	return q, nil
}

// String returns the exact text the query was parsed from.
func (q *Query) String() string {
	return q.str
}

// Conditions returns the conditions of the query. Callers must not modify
// the returned slice.
func (q *Query) Conditions() []Condition {
	return q.conditions
}

// AddCondition appends a condition. Queries are append-only.
func (q *Query) AddCondition(c Condition) {
	q.conditions = append(q.conditions, c)
}

// IsEmpty reports whether the query has no conditions.
func (q *Query) IsEmpty() bool {
	return q == nil || len(q.conditions) == 0
}

var idRe = regexp.MustCompile(`^#[0-9]+$`)

// ExtractID returns the integer of an #<digits> reference. Anything else,
// including "#4a", "42" and "# 42", is not an id.
func ExtractID(term string) (int64, bool) {
	if !idRe.MatchString(term) {
		return 0, false
	}
	id, err := strconv.ParseInt(term[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
