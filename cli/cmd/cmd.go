package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/log"
	"github.com/ardnew/tagfn/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer for command output.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr returns the writer for diagnostics.
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

// stdin is read when the source is "-".
var stdin io.Reader = os.Stdin

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Input selects the program text of a command.
type Input struct {
	Expr   string `help:"Program text to use instead of a source file" placeholder:"EXPR" short:"e"`
	Source string `arg:"" default:"-" help:"Source file or '-' for stdin" optional:""`
}

// load returns the program text.
func (in Input) load(ctx context.Context) (string, error) {
	if in.Expr != "" {
		return in.Expr, nil
	}

	name := in.Source
	if name == "" {
		name = stdinSource
	}

	log.DebugContext(ctx, "load source", slog.String("source", name))

	if name == stdinSource {
		if f, ok := stdin.(*os.File); ok && isTerminal(f) {
			return "", pkg.ErrNoInput.Wrapf("stdin is a terminal (use -e or a file)")
		}

		return lang.ReadSource(stdin)
	}

	file, err := os.Open(name)
	if err != nil {
		return "", pkg.ErrReadInput.Wrap(err)
	}
	defer file.Close()

	return lang.ReadSource(file)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()

	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// Options configures evaluation.
type Options struct {
	Define   []string `help:"Bind NAME to the value of the expr-lang expression EXPR" placeholder:"NAME=EXPR" sep:"none" short:"D"`
	MaxDepth int      `default:"${maxDepth}" help:"Limit evaluation nesting (0 disables)"`
}

// options returns the parse and evaluation options along with the global
// environment built from the definitions.
func (o Options) options(ctx context.Context) ([]lang.Option, *lang.Env, error) {
	env, err := Globals(ctx, o.Define...)
	if err != nil {
		return nil, nil, err
	}

	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(o.MaxDepth),
		lang.WithGlobals(env),
	}, env, nil
}

// diagnostic is implemented by errors that can render source context.
type diagnostic interface {
	Diagnostic() string
}

// report prints a source diagnostic for parse and evaluation failures and
// returns err wrapped for the command.
func report(ctx context.Context, command string, err error) error {
	var d diagnostic
	if errors.As(err, &d) {
		fmt.Fprintln(stderr(ctx), strings.TrimRight(d.Diagnostic(), "\n"))
	}

	var pe *lang.ParseError
	if errors.As(err, &pe) {
		return ErrParse.In(command).Wrap(err)
	}

	var ee *lang.EvalError
	if errors.As(err, &ee) {
		return ErrEvaluate.In(command).Wrap(err)
	}

	return err
}
