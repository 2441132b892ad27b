package lang

import (
	"iter"
	"strconv"
)

// Plain is an expression tree without source annotations.
// It is the shape used to compare parse results structurally.
type Plain struct {
	Expr Expr[*Plain]
}

// Var returns a plain variable reference.
func Var(name string) *Plain { return &Plain{VariableExpr[*Plain](name)} }

// Int returns a plain integer literal.
func Int(n int64) *Plain { return &Plain{IntExpr[*Plain](n)} }

// Str returns a plain string literal.
func Str(s string) *Plain { return &Plain{StringExpr[*Plain](s)} }

// Func returns a plain function literal.
func Func(params []string, body *Plain) *Plain {
	if params == nil {
		params = []string{}
	}

	return &Plain{FunctionExpr(params, body)}
}

// Call returns a plain call of callee with args.
func Call(callee *Plain, args ...*Plain) *Plain {
	if args == nil {
		args = []*Plain{}
	}

	return &Plain{CallExpr(callee, args)}
}

// Let returns a plain let-binding.
func Let(name string, value, body *Plain) *Plain {
	return &Plain{LetExpr(name, value, body)}
}

// Tag returns a plain tag element.
func Tag(name string, children ...*Plain) *Plain {
	if children == nil {
		children = []*Plain{}
	}

	return &Plain{TagExpr(name, children)}
}

// NodeID identifies a [Node] within the tree produced by one parse.
// IDs are keys for traces and visualization only. They never take part in
// evaluation or structural comparison.
type NodeID int

// Range is a half-open interval [Start, End) of character offsets into the
// source text.
type Range struct {
	Start int
	End   int
}

// Len returns the number of characters covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether offset lies within r.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// String returns r formatted as "[start, end)".
func (r Range) String() string {
	return "[" + strconv.Itoa(r.Start) + ", " + strconv.Itoa(r.End) + ")"
}

// Node is an expression annotated with the source range it was parsed from
// and a per-parse unique identity.
type Node struct {
	Expr  Expr[*Node]
	Range Range
	ID    NodeID
}

// Simplify strips ranges and identities, returning the bare expression shape.
func (n *Node) Simplify() *Plain {
	if n == nil {
		return nil
	}

	return &Plain{Map(n.Expr, (*Node).Simplify)}
}

// All returns a pre-order iterator over n and all of its descendants.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if n == nil {
		return true
	}

	if !yield(n) {
		return false
	}

	for _, sub := range n.Expr.Subexpressions() {
		if !sub.walk(yield) {
			return false
		}
	}

	return true
}

// Index returns every node in the tree rooted at n keyed by its ID.
func (n *Node) Index() map[NodeID]*Node {
	index := make(map[NodeID]*Node)
	for node := range n.All() {
		index[node.ID] = node
	}

	return index
}

// Text returns the slice of source covered by the node's range.
func (n *Node) Text(source string) string {
	r := []rune(source)
	if n.Range.Start < 0 || n.Range.End > len(r) ||
		n.Range.Start > n.Range.End {
		return ""
	}

	return string(r[n.Range.Start:n.Range.End])
}

// String renders the node in source syntax without annotations.
func (n *Node) String() string { return n.Simplify().String() }
