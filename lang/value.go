package lang

import (
	"slices"
	"strconv"
	"strings"
)

// Type indicates the runtime type of a [Value].
type Type int

const (
	// TypeString is a text value. It is HTML-escaped when placed in a tag.
	TypeString Type = iota

	// TypeInt is a signed 64-bit integer value.
	TypeInt

	// TypeFunction is a function value: parameter names and an unevaluated
	// body.
	TypeFunction

	// TypeHTML is markup that is already safe to emit verbatim.
	TypeHTML
)

// String returns a string representation of the value type.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "String"

	case TypeInt:
		return "Int"

	case TypeFunction:
		return "Function"

	case TypeHTML:
		return "Html"

	default:
		return "Unknown"
	}
}

// Value is a runtime value produced by evaluation.
//
// Function values do not capture the environment they were created in; free
// variables in Body are resolved against the caller's environment when the
// function is applied.
type Value struct {
	Type Type
	// Exactly one group of these is meaningful based on Type.
	Str    string   // TypeString, TypeHTML
	Int    int64    // TypeInt
	Params []string // TypeFunction
	Body   *Node    // TypeFunction
}

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Type: TypeString, Str: s} }

// IntValue returns an integer value.
func IntValue(n int64) Value { return Value{Type: TypeInt, Int: n} }

// HTMLValue returns a markup value. The markup is emitted verbatim.
func HTMLValue(markup string) Value { return Value{Type: TypeHTML, Str: markup} }

// FunctionValue returns a function value.
func FunctionValue(params []string, body *Node) Value {
	return Value{Type: TypeFunction, Params: params, Body: body}
}

// Equal reports whether v and w are the same value.
// Function values are equal when their parameters match and their bodies are
// structurally equal, ignoring source ranges and node identities.
func (v Value) Equal(w Value) bool {
	if v.Type != w.Type {
		return false
	}

	switch v.Type {
	case TypeInt:
		return v.Int == w.Int

	case TypeFunction:
		return slices.Equal(v.Params, w.Params) &&
			v.Body.Simplify().Equal(w.Body.Simplify())

	default:
		return v.Str == w.Str
	}
}

// String returns the display form of v: strings quoted, integers in decimal,
// markup raw, and functions as a reconstructed literal.
func (v Value) String() string {
	switch v.Type {
	case TypeString:
		return `"` + v.Str + `"`

	case TypeInt:
		return strconv.FormatInt(v.Int, 10)

	case TypeHTML:
		return v.Str

	case TypeFunction:
		var b strings.Builder

		b.WriteString("func(")
		b.WriteString(strings.Join(v.Params, ", "))
		b.WriteString(") { ")
		b.WriteString(v.Body.Simplify().String())
		b.WriteString(" }")

		return b.String()

	default:
		return ""
	}
}

// ToNative converts v to a plain Go value for serialization.
func (v Value) ToNative() any {
	switch v.Type {
	case TypeInt:
		return map[string]any{"type": v.Type.String(), "value": v.Int}

	case TypeString, TypeHTML:
		return map[string]any{"type": v.Type.String(), "value": v.Str}

	case TypeFunction:
		return map[string]any{"type": v.Type.String(), "value": v.String()}

	default:
		return nil
	}
}
