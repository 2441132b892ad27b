package lang

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func FuzzParse(f *testing.F) {
	// Seed corpus with known valid and invalid syntax
	f.Add("42")
	f.Add(`"hello"`)
	f.Add("foo")
	f.Add("func(x, y){ x }")
	f.Add("foo(hello)(world)")
	f.Add("let foo = 42 in foo")
	f.Add("<title>{ foo }</title>")
	f.Add("<a><b></a></b></a>")
	f.Add(`{ let f = func(x) { <p>{ x }</p> } in f }("x")`)
	f.Add("let x 1")
	f.Add("f(1,)")
	f.Add("*")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		length := utf8.RuneCountInString(input)

		root, err := Parse(input)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("non-parse error on %q: %v", input, err)
			}

			if pe.Offset < 0 || pe.Offset > length {
				t.Fatalf("offset %d out of bounds for %q", pe.Offset, input)
			}

			if root != nil {
				t.Fatalf("partial tree returned for %q", input)
			}

			return
		}

		seen := make(map[NodeID]bool)

		for n := range root.All() {
			if n.Range.Start < 0 || n.Range.Start > n.Range.End ||
				n.Range.End > length {
				t.Fatalf("range %s out of bounds for %q", n.Range, input)
			}

			if seen[n.ID] {
				t.Fatalf("duplicate id %d in %q", n.ID, input)
			}

			seen[n.ID] = true
		}

		// Rendering must parse back to the same shape.
		text := root.String()

		again, err := Parse(text)
		if err != nil {
			t.Fatalf("rendered %q of %q does not parse: %v", text, input, err)
		}

		if !again.Simplify().Equal(root.Simplify()) {
			t.Fatalf("round trip of %q changed shape: %q", input, text)
		}
	})
}
