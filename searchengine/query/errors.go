package query

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("query syntax error")

// Tokenizer errors.
var (
	ErrUnterminatedQuote = errors.New("unterminated quoted string")
	ErrUnbalancedParen   = errors.New("unbalanced parenthesis")
	ErrTrailingEscape    = errors.New("trailing escape character")
)

// Parser errors.
var (
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEOF   = errors.New("unexpected end of query")
	ErrMissingValue    = errors.New("missing value")
	ErrEmptyGroup      = errors.New("empty group")
)

// SyntaxError reports a malformed textual query.
type SyntaxError struct {
	Pos     int    // byte offset in input
	Text    string // offending substring
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("syntax error at position %d near %q: %s", e.Pos, e.Text, e.Message)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is makes every syntax error match ErrSyntax in addition to its sentinel.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func newSyntaxError(pos int, text string, err error, msgFmt string, args ...any) *SyntaxError {
	return &SyntaxError{
		Pos:     pos,
		Text:    text,
		Message: fmt.Sprintf(msgFmt, args...),
		Err:     err,
	}
}
