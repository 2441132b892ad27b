package cmd

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tagfn/cli/cmd/view"
	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/log"
	"github.com/ardnew/tagfn/pkg"
)

// Parse prints the syntax tree of a program.
type Parse struct {
	Input `embed:""`

	Format string `default:"native" enum:"native,tree,json,yaml" help:"Output format (${enum})" short:"f"`
	Ranges bool   `help:"Include node identities and source ranges"`
	Indent int    `default:"2" help:"Indent width (0 for compact output)" short:"i"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	source, err := p.load(ctx)
	if err != nil {
		return err
	}

	root, err := lang.ParseString(ctx, source,
		lang.WithLogger(log.Default()))
	if err != nil {
		return report(ctx, "parse", err)
	}

	log.DebugContext(ctx, "parsed",
		slog.Int("nodes", int(root.ID)+1),
		slog.String("format", p.Format))

	out := stdout(ctx)

	switch p.Format {
	case "native":
		err = root.Format(ctx, out, p.Indent)

	case "tree":
		err = view.Fprint(out, root,
			view.WithRenderer(lipgloss.NewRenderer(out)),
			view.WithRanges(p.Ranges))

	case "json":
		if p.Ranges {
			err = root.FormatJSON(ctx, out, p.Indent)
		} else {
			err = root.Simplify().FormatJSON(ctx, out, p.Indent)
		}

	case "yaml":
		if p.Ranges {
			err = root.FormatYAML(ctx, out, p.Indent)
		} else {
			err = root.Simplify().FormatYAML(ctx, out, p.Indent)
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q", p.Format)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", p.Format))
	}

	return nil
}
