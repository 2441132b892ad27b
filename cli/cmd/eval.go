package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/log"
)

// Eval evaluates a program and prints its value.
type Eval struct {
	Input   `embed:""`
	Options `embed:""`

	ShowTrace bool `help:"Print the evaluation trace to stderr" short:"t"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := e.load(ctx)
	if err != nil {
		return err
	}

	opts, _, err := e.options(ctx)
	if err != nil {
		return err
	}

	value, trace, err := lang.EvaluateString(ctx, source, opts...)

	if e.ShowTrace && trace != nil {
		writeEvents(stderr(ctx), trace)
	}

	if err != nil {
		return report(ctx, "eval", err)
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("type", value.Type.String()),
		slog.Int("events", len(trace)))

	if _, err := fmt.Fprintln(stdout(ctx), value.String()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// writeEvents prints one event per line, indented by nesting depth.
func writeEvents(w io.Writer, trace lang.Trace) {
	depth := 0

	for _, ev := range trace {
		if ev.Kind == lang.EventEnd && depth > 0 {
			depth--
		}

		fmt.Fprintln(w, strings.Repeat("  ", depth)+ev.String())

		if ev.Kind == lang.EventStart {
			depth++
		}
	}
}
