package searchengine

import (
	"errors"
	"fmt"

	"github.com/bileto/bileto/searchengine/query"
	"github.com/bileto/bileto/searchengine/querybuilder"
)

type ErrorKind string

const (
	ErrIO          ErrorKind = "io"
	ErrSQL         ErrorKind = "sql"
	ErrSchema      ErrorKind = "schema"
	ErrQuerySyntax ErrorKind = "query_syntax"
	ErrQueryValue  ErrorKind = "query_value"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Entity  string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Entity != "" {
		base = fmt.Sprintf("%s (entity=%s)", base, e.Entity)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// QueryError wraps an error from parsing or lowering a query in the kind
// callers show to users: ErrQuerySyntax or ErrQueryValue. Other errors get
// ErrSQL.
func QueryError(entity string, err error) *Error {
	var se *query.SyntaxError
	var ve *querybuilder.ValueError
	switch {
	case errors.As(err, &se):
		return &Error{Kind: ErrQuerySyntax, Message: "invalid query", Entity: entity, Cause: err}
	case errors.As(err, &ve):
		return &Error{Kind: ErrQueryValue, Message: "invalid query", Entity: entity, Cause: err}
	default:
		return &Error{Kind: ErrSQL, Message: "build query", Entity: entity, Cause: err}
	}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ParseQuery parses a textual query, reporting syntax errors as
// ErrQuerySyntax.
func ParseQuery(input string) (*query.Query, error) {
	q, err := query.FromString(input)
	if err != nil {
		return nil, QueryError("", err)
	}
	return q, nil
}
