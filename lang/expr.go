package lang

import "slices"

// Kind identifies the variant held by an [Expr].
type Kind int

const (
	// KindVariable is a reference to a bound name.
	KindVariable Kind = iota

	// KindInt is an integer literal.
	KindInt

	// KindString is a string literal.
	KindString

	// KindFunction is a function literal.
	KindFunction

	// KindCall applies a callee to an argument list.
	KindCall

	// KindLet binds a name for the evaluation of a body.
	KindLet

	// KindTag is an HTML-like element with a sequence of children.
	KindTag
)

// String returns the name of the expression kind.
func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"

	case KindInt:
		return "IntLiteral"

	case KindString:
		return "StringLiteral"

	case KindFunction:
		return "Function"

	case KindCall:
		return "Call"

	case KindLet:
		return "Let"

	case KindTag:
		return "Tag"

	default:
		return "Unknown"
	}
}

// Expr is one expression node whose sub-expressions are represented by R.
//
// The same variant set is shared by the bare tree ([Plain], R = *Plain) and
// the source-annotated tree ([Node], R = *Node). Only the fields relevant to
// Kind are populated:
//
//	KindVariable  Name
//	KindInt       Int
//	KindString    Str
//	KindFunction  Params, Body
//	KindCall      Callee, Args
//	KindLet       Name, Value, Body
//	KindTag       Name, Children
type Expr[R any] struct {
	Kind     Kind
	Name     string
	Int      int64
	Str      string
	Params   []string
	Callee   R
	Value    R
	Body     R
	Args     []R
	Children []R
}

// Map returns a copy of e with every sub-expression converted by f.
// Sub-expressions are visited in source order.
func Map[R, S any](e Expr[R], f func(R) S) Expr[S] {
	out := Expr[S]{
		Kind:   e.Kind,
		Name:   e.Name,
		Int:    e.Int,
		Str:    e.Str,
		Params: slices.Clone(e.Params),
	}

	switch e.Kind {
	case KindFunction:
		out.Body = f(e.Body)

	case KindCall:
		out.Callee = f(e.Callee)
		out.Args = mapAll(e.Args, f)

	case KindLet:
		out.Value = f(e.Value)
		out.Body = f(e.Body)

	case KindTag:
		out.Children = mapAll(e.Children, f)
	}

	return out
}

// Subexpressions returns the direct sub-expressions of e in source order.
func (e Expr[R]) Subexpressions() []R {
	switch e.Kind {
	case KindFunction:
		return []R{e.Body}

	case KindCall:
		return append([]R{e.Callee}, e.Args...)

	case KindLet:
		return []R{e.Value, e.Body}

	case KindTag:
		return slices.Clone(e.Children)

	default:
		return nil
	}
}

func mapAll[R, S any](rs []R, f func(R) S) []S {
	if rs == nil {
		return nil
	}

	out := make([]S, len(rs))
	for i, r := range rs {
		out[i] = f(r)
	}

	return out
}

// VariableExpr returns a variable reference.
func VariableExpr[R any](name string) Expr[R] {
	return Expr[R]{Kind: KindVariable, Name: name}
}

// IntExpr returns an integer literal.
func IntExpr[R any](n int64) Expr[R] {
	return Expr[R]{Kind: KindInt, Int: n}
}

// StringExpr returns a string literal.
func StringExpr[R any](s string) Expr[R] {
	return Expr[R]{Kind: KindString, Str: s}
}

// FunctionExpr returns a function literal.
func FunctionExpr[R any](params []string, body R) Expr[R] {
	return Expr[R]{Kind: KindFunction, Params: params, Body: body}
}

// CallExpr returns an application of callee to args.
func CallExpr[R any](callee R, args []R) Expr[R] {
	return Expr[R]{Kind: KindCall, Callee: callee, Args: args}
}

// LetExpr returns a let-binding.
func LetExpr[R any](name string, value, body R) Expr[R] {
	return Expr[R]{Kind: KindLet, Name: name, Value: value, Body: body}
}

// TagExpr returns a tag element.
func TagExpr[R any](name string, children []R) Expr[R] {
	return Expr[R]{Kind: KindTag, Name: name, Children: children}
}
