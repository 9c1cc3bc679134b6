package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is returned when "/" or "%" has a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUndefined is returned when a variable has no value.
	ErrUndefined = errors.New("undefined variable")
	// ErrArgument is returned when a built-in receives an argument outside
	// its domain, such as a negative exponent or an oversized shift.
	ErrArgument = errors.New("argument out of range")
)

// SyntaxError reports a lexical or grammatical error.
type SyntaxError struct {
	// Pos is the zero-based byte offset of the offending token.
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos+1, e.Msg)
}

// EvalError reports a failure while evaluating a node.
type EvalError struct {
	Pos int
	Op  string
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %s at position %d: %v", e.Op, e.Pos+1, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

func evalErr(n Node, op string, err error) *EvalError {
	return &EvalError{Pos: n.Pos(), Op: op, Err: err}
}
