package bigint

import (
	"errors"
	"strconv"
)

var (
	// ErrDivisionByZero is the panic value of Quo, Rem and their *Assign
	// forms when the divisor is 0, and the error returned by QuoRem.
	ErrDivisionByZero = errors.New("bigint: division by zero")

	// ErrEmpty is reported when parsing an empty string.
	ErrEmpty = errors.New("empty input")

	// ErrSyntax is reported when the input is not a decimal integer.
	ErrSyntax = errors.New("invalid syntax")
)

// NumError records a failed conversion from text. It wraps ErrEmpty or
// ErrSyntax.
type NumError struct {
	Input  string
	Offset int // byte offset of the first offending character
	Err    error
}

func (e *NumError) Error() string {
	if e.Err == ErrEmpty {
		return "bigint: parsing " + strconv.Quote(e.Input) + ": " + e.Err.Error()
	}
	return "bigint: parsing " + strconv.Quote(e.Input) + ": " + e.Err.Error() +
		" at offset " + strconv.Itoa(e.Offset)
}

func (e *NumError) Unwrap() error { return e.Err }
