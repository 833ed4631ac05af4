package algebra

import (
	"errors"
	"fmt"
)

// ============================================================
// Error kinds
// ============================================================

// SyntaxError is raised by the lexer and the parser. Pos is a 0-based rune
// offset into the normalized input.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

// DomainError reports a request that is well-formed but meaningless, such
// as a division by zero or solving something that is not an equation.
type DomainError struct{ Msg string }

func (e *DomainError) Error() string { return e.Msg }

// UnsolvableError reports an equation without a closed-form treatment.
type UnsolvableError struct{ Msg string }

func (e *UnsolvableError) Error() string { return "cannot solve: " + e.Msg }

// BudgetError reports an exhausted limit; What names it.
type BudgetError struct{ What string }

func (e *BudgetError) Error() string { return "budget exceeded: " + e.What }

// InternalError marks a state a correct engine never reaches.
type InternalError struct{ Msg string }

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

// ErrorKind classifies err as syntax, domain, unsolvable, budget or
// internal. Unknown errors are internal.
func ErrorKind(err error) string {
	var (
		se *SyntaxError
		de *DomainError
		ue *UnsolvableError
		be *BudgetError
	)
	switch {
	case errors.As(err, &se):
		return "syntax"
	case errors.As(err, &de):
		return "domain"
	case errors.As(err, &ue):
		return "unsolvable"
	case errors.As(err, &be):
		return "budget"
	}
	return "internal"
}

func domainErr(format string, args ...any) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

func syntaxErr(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
