package sexpr

import "fmt"

// Deterministic error codes for interpreter failures.
const (
	ErrSyntax            = "ERR_SYNTAX"
	ErrUnknownSymbol     = "ERR_UNKNOWN_SYMBOL"
	ErrNotAFunction      = "ERR_NOT_A_FUNCTION"
	ErrUndefinedVariable = "ERR_UNDEFINED_VARIABLE"
	ErrBadArgument       = "ERR_BAD_ARGUMENT"
	ErrBudgetExceeded    = "ERR_BUDGET_EXCEEDED"
)

// Error is a typed interpreter failure. It stays internal control flow
// until the public-operation boundary, where Message is surfaced verbatim.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the interpreter error code carried by err, or "" if err is
// not an interpreter error.
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
