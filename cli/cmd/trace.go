package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tagfn/cli/cmd/view"
	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/log"
	"github.com/ardnew/tagfn/pkg"
)

// Trace prints the evaluation trace of a program.
type Trace struct {
	Input   `embed:""`
	Options `embed:""`

	Format string `default:"view" enum:"view,events,json,yaml" help:"Output format (${enum})" short:"f"`
	Step   int    `default:"-1" help:"Replay only the first N events (negative for all)" short:"n"`
	Ranges bool   `help:"Include node identities and source ranges in the view"`
	Indent int    `default:"2" help:"Indent width for json and yaml (0 for compact output)" short:"i"`
}

// Run executes the trace command.
// The trace is printed even when evaluation fails.
func (t *Trace) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := t.load(ctx)
	if err != nil {
		return err
	}

	opts, _, err := t.options(ctx)
	if err != nil {
		return err
	}

	root, err := lang.ParseString(ctx, source, opts...)
	if err != nil {
		return report(ctx, "trace", err)
	}

	_, trace, evalErr := lang.Evaluate(ctx, root, opts...)
	if ee := (*lang.EvalError)(nil); errors.As(evalErr, &ee) {
		ee.Source = source
	}

	events := trace
	if t.Step >= 0 && t.Step < len(trace) {
		events = trace[:t.Step]
	}

	log.DebugContext(ctx, "traced",
		slog.Int("events", len(trace)),
		slog.Int("shown", len(events)),
		slog.Bool("failed", evalErr != nil))

	out := stdout(ctx)

	switch t.Format {
	case "view":
		err = view.Fprint(out, root,
			view.WithRenderer(lipgloss.NewRenderer(out)),
			view.WithTrace(trace, t.Step),
			view.WithRanges(t.Ranges))

	case "events":
		writeEvents(out, events)

	case "json":
		err = events.FormatJSON(ctx, out, t.Indent)

	case "yaml":
		err = events.FormatYAML(ctx, out, t.Indent)

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q", t.Format)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", t.Format))
	}

	if evalErr != nil {
		return report(ctx, "trace", evalErr)
	}

	return nil
}
