package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every [*ParseError] and [*EvalError] unwraps to exactly one of these, so
// callers may test the reason with errors.Is.
var (
	ErrUnexpectedEOF       = NewError("unexpected end of input")
	ErrExpectedAtom        = NewError("expected atom")
	ErrExpectedIdentifier  = NewError("expected identifier")
	ErrExpectedOperator    = NewError("expected operator")
	ErrExpectedKeyword     = NewError("expected keyword")
	ErrExpected            = NewError("expected token")
	ErrUnexpectedRemainder = NewError("unexpected remainder")
	ErrInvalidInteger      = NewError("integer literal out of range")

	ErrVariableMissing        = NewError("variable not bound")
	ErrExpectedFunction       = NewError("expected function")
	ErrWrongNumberOfArguments = NewError("wrong number of arguments")
	ErrTypeError              = NewError("type error")
	ErrRecursionLimit         = NewError("recursion limit exceeded")

	ErrInvalidTrace = NewError("invalid trace")
	ErrReadInput    = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
// An error that already is (or wraps) an *Error is returned as that *Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "" depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so errors
// derived from a sentinel with [Error.With] or [Error.Wrap] still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseReason classifies a [ParseError].
type ParseReason int

const (
	ReasonUnexpectedEOF ParseReason = iota
	ReasonExpectedAtom
	ReasonExpectedIdentifier
	ReasonExpectedOperator
	ReasonExpectedKeyword
	ReasonExpected
	ReasonUnexpectedRemainder
	ReasonInvalidInteger
)

// String returns the name of the reason.
func (r ParseReason) String() string {
	switch r {
	case ReasonUnexpectedEOF:
		return "UnexpectedEOF"
	case ReasonExpectedAtom:
		return "ExpectedAtom"
	case ReasonExpectedIdentifier:
		return "ExpectedIdentifier"
	case ReasonExpectedOperator:
		return "ExpectedOperator"
	case ReasonExpectedKeyword:
		return "ExpectedKeyword"
	case ReasonExpected:
		return "Expected"
	case ReasonUnexpectedRemainder:
		return "UnexpectedRemainder"
	case ReasonInvalidInteger:
		return "InvalidInteger"
	default:
		return "Unknown"
	}
}

func (r ParseReason) sentinel() *Error {
	switch r {
	case ReasonUnexpectedEOF:
		return ErrUnexpectedEOF
	case ReasonExpectedAtom:
		return ErrExpectedAtom
	case ReasonExpectedIdentifier:
		return ErrExpectedIdentifier
	case ReasonExpectedOperator:
		return ErrExpectedOperator
	case ReasonExpectedKeyword:
		return ErrExpectedKeyword
	case ReasonExpected:
		return ErrExpected
	case ReasonUnexpectedRemainder:
		return ErrUnexpectedRemainder
	default:
		return ErrInvalidInteger
	}
}

// ParseError reports the first failure encountered while parsing.
// No partial tree accompanies it.
type ParseError struct {
	// Offset is the character offset in Source where parsing failed.
	Offset int
	Reason ParseReason
	// Detail holds the expected operator, keyword or token for the Expected*
	// reasons, the unconsumed text for UnexpectedRemainder, and the digits for
	// InvalidInteger. It is empty for the other reasons.
	Detail string
	// Source is the complete text that was parsed.
	Source string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString("parse error at ")
	b.WriteString(location(e.Source, e.Offset))
	b.WriteString(": ")
	b.WriteString(e.Reason.sentinel().msg)

	if e.Detail != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Detail))
	}

	return b.String()
}

// Unwrap returns the sentinel error for the reason.
func (e *ParseError) Unwrap() error { return e.Reason.sentinel() }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	line, col := Locate(e.Source, e.Offset)

	attrs := []slog.Attr{
		slog.String("error", e.Reason.sentinel().msg),
		slog.String("reason", e.Reason.String()),
		slog.Int("offset", e.Offset),
		slog.Int("line", line),
		slog.Int("column", col),
	}

	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}

	return slog.GroupValue(attrs...)
}

// Diagnostic returns the error message followed by the offending source line
// and a caret marking the failure position.
func (e *ParseError) Diagnostic() string {
	return e.Error() + "\n" + caret(e.Source, Range{e.Offset, e.Offset + 1})
}

// EvalReason classifies an [EvalError].
type EvalReason int

const (
	ReasonVariableMissing EvalReason = iota
	ReasonExpectedFunction
	ReasonWrongNumberOfArguments
	ReasonTypeError
	ReasonRecursionLimitExceeded
)

// String returns the name of the reason.
func (r EvalReason) String() string {
	switch r {
	case ReasonVariableMissing:
		return "VariableMissing"
	case ReasonExpectedFunction:
		return "ExpectedFunction"
	case ReasonWrongNumberOfArguments:
		return "WrongNumberOfArguments"
	case ReasonTypeError:
		return "TypeError"
	case ReasonRecursionLimitExceeded:
		return "RecursionLimitExceeded"
	default:
		return "Unknown"
	}
}

func (r EvalReason) sentinel() *Error {
	switch r {
	case ReasonVariableMissing:
		return ErrVariableMissing
	case ReasonExpectedFunction:
		return ErrExpectedFunction
	case ReasonWrongNumberOfArguments:
		return ErrWrongNumberOfArguments
	case ReasonTypeError:
		return ErrTypeError
	default:
		return ErrRecursionLimit
	}
}

// EvalError reports a failure while evaluating a parsed tree.
type EvalError struct {
	// Range is the source range of the node the failure is attributed to.
	Range  Range
	Reason EvalReason
	// Name is the unbound variable (VariableMissing).
	Name string
	// Got is the non-function callee value (ExpectedFunction).
	Got Value
	// Expected and Count are the parameter and argument counts
	// (WrongNumberOfArguments). Expected also holds the ceiling for
	// RecursionLimitExceeded.
	Expected int
	Count    int
	// Description explains a TypeError.
	Description string
	// Source is the text the tree was parsed from, if known.
	Source string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	var b strings.Builder

	b.WriteString("evaluation error at ")

	if e.Source != "" {
		b.WriteString(location(e.Source, e.Range.Start))
	} else {
		b.WriteString(e.Range.String())
	}

	b.WriteString(": ")
	b.WriteString(e.Reason.sentinel().msg)

	switch e.Reason {
	case ReasonVariableMissing:
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Name))

	case ReasonExpectedFunction:
		b.WriteString(", got ")
		b.WriteString(e.Got.Type.String())
		b.WriteString(" ")
		b.WriteString(e.Got.String())

	case ReasonWrongNumberOfArguments:
		b.WriteString(": expected ")
		b.WriteString(strconv.Itoa(e.Expected))
		b.WriteString(", got ")
		b.WriteString(strconv.Itoa(e.Count))

	case ReasonTypeError:
		b.WriteString(": ")
		b.WriteString(e.Description)

	case ReasonRecursionLimitExceeded:
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(e.Expected))
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap returns the sentinel error for the reason.
func (e *EvalError) Unwrap() error { return e.Reason.sentinel() }

// LogValue implements slog.LogValuer.
func (e *EvalError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Reason.sentinel().msg),
		slog.String("reason", e.Reason.String()),
		slog.Int("start", e.Range.Start),
		slog.Int("end", e.Range.End),
	}

	switch e.Reason {
	case ReasonVariableMissing:
		attrs = append(attrs, slog.String("name", e.Name))

	case ReasonExpectedFunction:
		attrs = append(attrs, slog.String("got", e.Got.String()))

	case ReasonWrongNumberOfArguments:
		attrs = append(attrs,
			slog.Int("expected", e.Expected),
			slog.Int("got", e.Count))

	case ReasonTypeError:
		attrs = append(attrs, slog.String("description", e.Description))

	case ReasonRecursionLimitExceeded:
		attrs = append(attrs, slog.Int("max_depth", e.Expected))
	}

	return slog.GroupValue(attrs...)
}

// Diagnostic returns the error message followed by the offending source line
// with the attributed range underlined.
func (e *EvalError) Diagnostic() string {
	if e.Source == "" {
		return e.Error()
	}

	return e.Error() + "\n" + caret(e.Source, e.Range)
}

// Locate converts a character offset into a 1-based line and column.
// Offsets past the end of source resolve to the position just after the last
// character.
func Locate(source string, offset int) (line, column int) {
	line, column = 1, 1

	for i, r := range []rune(source) {
		if i >= offset {
			break
		}

		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	return line, column
}

func location(source string, offset int) string {
	line, col := Locate(source, offset)

	return "line " + strconv.Itoa(line) + ", column " + strconv.Itoa(col)
}

// caret renders the source line containing r.Start, followed by a marker line
// underlining r (clipped to that line).
func caret(source string, r Range) string {
	line, col := Locate(source, r.Start)
	lines := strings.Split(source, "\n")

	if line > len(lines) {
		return ""
	}

	text := lines[line-1]
	width := len([]rune(text))

	// Width of the underline, at least one, at most to the end of the line.
	n := max(min(r.Len(), width-col+1), 1)

	var b strings.Builder

	num := strconv.Itoa(line)

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(text)
	b.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	b.WriteString(strings.Repeat(" ", len(num)+5+col-1))
	b.WriteString("^")
	b.WriteString(strings.Repeat("~", n-1))
	b.WriteRune('\n')

	return b.String()
}
