package eval

import "fmt"

// ErrorKind classifies evaluation failures. Callers typically match on the
// message text, so every constructor keeps the offending formula, name, or
// index in the message; the kind exists for programmatic checks in tests
// and the engine.
type ErrorKind int

const (
	KindUnknownFunction ErrorKind = iota + 1
	KindUnknownReference
	KindArity
	KindDomain
	KindIndexOutOfBounds
	KindRowCountMismatch
	KindAggregationInRowContext
	KindCircularDependency
)

// Error is the single error type surfaced by the evaluator and the engine.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errf builds an Error with a formatted message.
func Errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err if it is an *Error, or 0 otherwise.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}
