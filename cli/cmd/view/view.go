// Package view renders expression trees and evaluation traces for terminals.
//
// A tree is drawn with one line per node. When a trace is attached, each line
// is annotated with the node's status after replaying a prefix of the trace:
// nodes not yet visited are dimmed, nodes in progress list the names bound in
// their environment, and finished nodes show their value or error.
package view

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ardnew/tagfn/lang"
)

// maxValueWidth is the number of characters of a value shown inline.
const maxValueWidth = 40

type config struct {
	renderer *lipgloss.Renderer
	trace    lang.Trace
	step     int
	traced   bool
	ranges   bool
}

// Option configures rendering.
type Option func(*config)

// WithRenderer sets the lipgloss renderer used to style output.
// The default renders for [os.Stdout].
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(c *config) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithTrace annotates nodes with their status after the first step events of
// t. A negative step shows the complete trace.
func WithTrace(t lang.Trace, step int) Option {
	return func(c *config) {
		c.trace = t
		c.step = step
		c.traced = true
	}
}

// WithRanges includes node identities and source ranges in labels.
func WithRanges(show bool) Option {
	return func(c *config) {
		c.ranges = show
	}
}

type styles struct {
	label, meta, pending, active, done, failed, enum lipgloss.Style
}

func makeStyles(r *lipgloss.Renderer) styles {
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return styles{
		label:   r.NewStyle(),
		meta:    color("8"),
		pending: color("8").Faint(true),
		active:  color("3"),
		done:    color("2"),
		failed:  color("1"),
		enum:    color("8").MarginRight(1),
	}
}

// Render returns the tree drawing of root.
func Render(root *lang.Node, opts ...Option) string {
	c := config{step: -1}

	for _, opt := range opts {
		opt(&c)
	}

	if c.renderer == nil {
		c.renderer = lipgloss.NewRenderer(os.Stdout)
	}

	if root == nil {
		return ""
	}

	v := viewer{config: c, styles: makeStyles(c.renderer)}

	if c.traced {
		v.status = c.trace.Status(c.step)
	}

	var b strings.Builder

	if c.traced {
		b.WriteString(v.header())
		b.WriteByte('\n')
	}

	b.WriteString(v.build(root).String())
	b.WriteByte('\n')

	return b.String()
}

// Fprint writes the tree drawing of root to w.
func Fprint(w io.Writer, root *lang.Node, opts ...Option) error {
	_, err := io.WriteString(w, Render(root, opts...))

	return err
}

type viewer struct {
	config
	styles styles
	status map[lang.NodeID]lang.Status
}

// header describes the replay position and the next event to be applied.
func (v viewer) header() string {
	step := v.step
	if step < 0 || step > len(v.trace) {
		step = len(v.trace)
	}

	s := "step " + strconv.Itoa(step) + "/" + strconv.Itoa(len(v.trace))

	if step < len(v.trace) {
		s += ", next " + v.trace[step].String()
	}

	return v.styles.meta.Render(s)
}

func (v viewer) build(n *lang.Node) *tree.Tree {
	t := tree.Root(v.label(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(v.styles.enum)

	for _, child := range n.Expr.Subexpressions() {
		if len(child.Expr.Subexpressions()) == 0 {
			t.Child(v.label(child))
		} else {
			t.Child(v.build(child))
		}
	}

	return t
}

func (v viewer) label(n *lang.Node) string {
	text := v.styles.label.Render(describe(n))

	if v.ranges {
		text += " " + v.styles.meta.Render(
			"#"+strconv.Itoa(int(n.ID))+" "+n.Range.String())
	}

	if !v.traced {
		return text
	}

	s, ok := v.status[n.ID]

	switch {
	case !ok:
		return v.styles.pending.Render(describe(n))

	case s.State == lang.StateInProgress:
		return text + " " + v.styles.active.Render(
			"… {"+strings.Join(s.Env.Names(), ", ")+"}")

	case s.Err != nil:
		return text + " " + v.styles.failed.Render("✗ "+failure(s.Err))

	default:
		return text + " " + v.styles.done.Render("= "+truncate(s.Value.String()))
	}
}

// describe returns the kind of n and its distinguishing literal.
func describe(n *lang.Node) string {
	e := n.Expr
	kind := e.Kind.String()

	switch e.Kind {
	case lang.KindVariable, lang.KindLet:
		return kind + " " + e.Name

	case lang.KindInt:
		return kind + " " + strconv.FormatInt(e.Int, 10)

	case lang.KindString:
		return kind + " " + truncate(strconv.Quote(e.Str))

	case lang.KindFunction:
		return kind + "(" + strings.Join(e.Params, ", ") + ")"

	case lang.KindTag:
		return kind + " <" + e.Name + ">"

	default:
		return kind
	}
}

func failure(err error) string {
	var ee *lang.EvalError
	if errors.As(err, &ee) {
		return ee.Reason.String()
	}

	return err.Error()
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")

	r := []rune(s)
	if len(r) <= maxValueWidth {
		return s
	}

	return string(r[:maxValueWidth-1]) + "…"
}
