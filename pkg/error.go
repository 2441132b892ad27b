package pkg

// Sentinel errors shared by the tagfn command-line packages.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a chain of errors, innermost first.
type Error []error

// ErrReadInput is returned when reading a source file or stdin fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrInvalidFormat is returned when an unknown output format is requested.
//
// This error should be wrapped with additional context that names the
// invalid format along with the valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrInvalidDefine is returned when a --define flag is malformed or its
// expression cannot be evaluated to a template value.
var ErrInvalidDefine = MakeErrorf("invalid definition")

// ErrNoInput is returned when a command that needs source text receives none.
var ErrNoInput = MakeErrorf("no input")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil errors are skipped and nested chains are flattened.
func MakeError(errs ...error) Error {
	return Error(nil).Wrap(errs...)
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns every error in the chain from innermost to outermost,
// separated by ": ".
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap returns a new chain with errs appended to the receiver.
func (e Error) Wrap(errs ...error) Error {
	out := make(Error, 0, len(e)+len(errs))
	out = append(out, e...)

	for _, err := range errs {
		switch chain := err.(type) {
		case nil:
		case Error:
			out = append(out, chain...)
		default:
			out = append(out, err)
		}
	}

	return out
}

// Wrapf returns a new chain with a formatted error appended to the receiver.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's, so a sentinel matches every chain derived from it with
// [Error.Wrap].
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if t[i] != e[i] {
			return false
		}
	}

	return true
}
