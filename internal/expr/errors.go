package expr

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty          = errors.New("empty expression")
	ErrTooLong        = errors.New("expression too long")
	ErrUnexpectedChar = errors.New("unexpected character")
	ErrUnknownUnit    = errors.New("unknown unit")
	ErrSyntax         = errors.New("syntax error")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNonFinite      = errors.New("result is not a finite number")
)

// Error describes why an expression could not be evaluated. Pos is the byte
// offset into the input, or -1 when the failure is not tied to a position.
type Error struct {
	Input  string
	Pos    int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("evaluation error at position %d: %s", e.Pos+1, msg)
	}
	return "evaluation error: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(input string, pos int, err error, detail string) *Error {
	return &Error{Input: input, Pos: pos, Detail: detail, Err: err}
}

// Kind names the failure class of err for logs and metrics; "ok" for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmpty):
		return "empty"
	case errors.Is(err, ErrTooLong):
		return "too_long"
	case errors.Is(err, ErrUnexpectedChar):
		return "unexpected_char"
	case errors.Is(err, ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrNonFinite):
		return "non_finite"
	}
	return "other"
}
