package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// String renders p in source syntax. Parsing the result yields a tree that
// simplifies back to p.
func (p *Plain) String() string {
	var b strings.Builder

	writePlain(&b, p, 0, 0)

	return b.String()
}

// Equal reports whether p and q have the same shape.
// Nil and empty sequences are considered equal.
func (p *Plain) Equal(q *Plain) bool {
	if p == nil || q == nil {
		return p == q
	}

	a, b := p.Expr, q.Expr
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindVariable:
		return a.Name == b.Name

	case KindInt:
		return a.Int == b.Int

	case KindString:
		return a.Str == b.Str

	case KindFunction:
		return slices.Equal(a.Params, b.Params) && a.Body.Equal(b.Body)

	case KindCall:
		return a.Callee.Equal(b.Callee) && equalAll(a.Args, b.Args)

	case KindLet:
		return a.Name == b.Name &&
			a.Value.Equal(b.Value) && a.Body.Equal(b.Body)

	case KindTag:
		return a.Name == b.Name && equalAll(a.Children, b.Children)

	default:
		return false
	}
}

func equalAll(a, b []*Plain) bool {
	return slices.EqualFunc(a, b, (*Plain).Equal)
}

// Format writes n in source syntax to w.
// With indent > 0 each tag child is placed on its own indented line.
func (n *Node) Format(_ context.Context, w io.Writer, indent int) error {
	var b strings.Builder

	writePlain(&b, n.Simplify(), indent, 0)

	_, err := fmt.Fprintln(w, b.String())

	return err
}

// writePlain renders p into b. Only tags break lines when indent > 0.
func writePlain(b *strings.Builder, p *Plain, indent, depth int) {
	if p == nil {
		return
	}

	e := p.Expr

	switch e.Kind {
	case KindVariable:
		b.WriteString(e.Name)

	case KindInt:
		b.WriteString(strconv.FormatInt(e.Int, 10))

	case KindString:
		b.WriteByte('"')
		b.WriteString(e.Str)
		b.WriteByte('"')

	case KindFunction:
		b.WriteString("func(")
		b.WriteString(strings.Join(e.Params, ", "))
		b.WriteString(") { ")
		writePlain(b, e.Body, indent, depth)
		b.WriteString(" }")

	case KindCall:
		// A let-binding would swallow the argument list into its body.
		if e.Callee.Expr.Kind == KindLet {
			b.WriteString("{ ")
			writePlain(b, e.Callee, indent, depth)
			b.WriteString(" }")
		} else {
			writePlain(b, e.Callee, indent, depth)
		}

		b.WriteByte('(')

		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			writePlain(b, arg, indent, depth)
		}

		b.WriteByte(')')

	case KindLet:
		b.WriteString("let ")
		b.WriteString(e.Name)
		b.WriteString(" = ")
		writePlain(b, e.Value, indent, depth)
		b.WriteString(" in ")
		writePlain(b, e.Body, indent, depth)

	case KindTag:
		b.WriteByte('<')
		b.WriteString(e.Name)
		b.WriteByte('>')

		for _, child := range e.Children {
			if indent > 0 {
				b.WriteByte('\n')
				b.WriteString(strings.Repeat(" ", (depth+1)*indent))
			}

			if child.Expr.Kind == KindTag {
				writePlain(b, child, indent, depth+1)
			} else {
				b.WriteString("{ ")
				writePlain(b, child, indent, depth+1)
				b.WriteString(" }")
			}
		}

		if indent > 0 && len(e.Children) > 0 {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", depth*indent))
		}

		b.WriteString("</")
		b.WriteString(e.Name)
		b.WriteByte('>')
	}
}

// ToNative converts p to plain Go maps and slices for serialization.
func (p *Plain) ToNative() map[string]any {
	if p == nil {
		return nil
	}

	return exprNative(p.Expr, func(c *Plain) any { return c.ToNative() })
}

// ToNative converts n to plain Go maps and slices for serialization,
// including each node's range and identity.
func (n *Node) ToNative() map[string]any {
	if n == nil {
		return nil
	}

	m := exprNative(n.Expr, func(c *Node) any { return c.ToNative() })
	m["id"] = int(n.ID)
	m["range"] = []int{n.Range.Start, n.Range.End}

	return m
}

func exprNative[R any](e Expr[R], child func(R) any) map[string]any {
	m := map[string]any{"kind": e.Kind.String()}

	all := func(rs []R) []any {
		out := make([]any, len(rs))
		for i, r := range rs {
			out[i] = child(r)
		}

		return out
	}

	switch e.Kind {
	case KindVariable:
		m["name"] = e.Name

	case KindInt:
		m["value"] = e.Int

	case KindString:
		m["value"] = e.Str

	case KindFunction:
		m["parameters"] = slices.Clone(e.Params)
		m["body"] = child(e.Body)

	case KindCall:
		m["callee"] = child(e.Callee)
		m["arguments"] = all(e.Args)

	case KindLet:
		m["name"] = e.Name
		m["value"] = child(e.Value)
		m["body"] = child(e.Body)

	case KindTag:
		m["name"] = e.Name
		m["body"] = all(e.Children)
	}

	return m
}

// FormatJSON writes n, with ranges and identities, as JSON to w.
func (n *Node) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, n.ToNative(), indent)
}

// FormatYAML writes n, with ranges and identities, as YAML to w.
func (n *Node) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, n.ToNative(), indent)
}

// FormatJSON writes p as JSON to w.
func (p *Plain) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, p.ToNative(), indent)
}

// FormatYAML writes p as YAML to w.
func (p *Plain) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, p.ToNative(), indent)
}

// FormatJSON writes t as a JSON array of events to w.
func (t Trace) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, t.ToNative(), indent)
}

// FormatYAML writes t as a YAML sequence of events to w.
func (t Trace) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, t.ToNative(), indent)
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
