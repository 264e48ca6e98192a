package querybuilder

import (
	"errors"
	"fmt"
	"strings"
)

// Caller-facing lowering errors, matched through *ValueError.
var (
	ErrUnknownQualifier = errors.New("unknown qualifier")
	ErrInvalidValue     = errors.New("invalid qualifier value")
)

// ValueError reports a qualifier or value the entity does not support. It
// usually comes from a user typo and is meant to surface as a validation
// message.
type ValueError struct {
	Qualifier string
	Values    []string
	Message   string
	Err       error
}

func (e *ValueError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	if e.Values == nil {
		return fmt.Sprintf("%v: %s", e.Err, e.Qualifier)
	}
	return fmt.Sprintf("%v: %s:%s", e.Err, e.Qualifier, strings.Join(e.Values, ","))
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// UnknownQualifier returns the error for a qualifier or qualifier:value with
// no registered handler.
func UnknownQualifier(name string, values []string) *ValueError {
	return &ValueError{Qualifier: name, Values: values, Err: ErrUnknownQualifier}
}

// InvalidValue returns the error for a value rejected by a handler.
func InvalidValue(qualifier, value, msgFmt string, args ...any) *ValueError {
	return &ValueError{
		Qualifier: qualifier,
		Values:    []string{value},
		Message:   fmt.Sprintf(msgFmt, args...),
		Err:       ErrInvalidValue,
	}
}

// LogicError is panicked when a qualifier handler breaks its contract, for
// instance by returning an empty expression. It signals a bug, not bad input.
type LogicError struct {
	Message string
}

func (e *LogicError) Error() string {
	return "query builder logic error: " + e.Message
}
