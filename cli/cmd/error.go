package cmd

import (
	"log/slog"
	"strings"
)

// Error is a command failure with structured logging support.
// Errors derived from a sentinel with [Error.In], [Error.Wrap] or [Error.With]
// match it with errors.Is.
type Error struct {
	command string
	msg     string
	err     error
	attrs   []slog.Attr
}

// NewError returns a sentinel error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error returns "<command>: <msg>: <cause>", omitting empty parts.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	for _, s := range []string{e.command, e.msg} {
		if s != "" {
			part = append(part, s)
		}
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.command != "" {
		attrs = append(attrs, slog.String("command", e.command))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// In returns a copy of e attributed to the named command.
func (e *Error) In(command string) *Error {
	c := *e
	c.command = command

	return &c
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e with attrs appended for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...)

	return &c
}

var (
	ErrParse       = NewError("parse failed")
	ErrEvaluate    = NewError("evaluation failed")
	ErrWriteOutput = NewError("write output")
)
