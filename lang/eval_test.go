package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluate_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  Value
	}{
		{
			name:  "int literal",
			input: "42",
			want:  IntValue(42),
		},
		{
			name:  "string literal",
			input: `"hello"`,
			want:  StringValue("hello"),
		},
		{
			name:  "let binding",
			input: "let x = 7 in x",
			want:  IntValue(7),
		},
		{
			name:  "const function",
			input: "let const = func(x,y){ y } in const(1, 42)",
			want:  IntValue(42),
		},
		{
			name:  "immediately applied function",
			input: `func(s) { s }("a")`,
			want:  StringValue("a"),
		},
		{
			name:  "curried application",
			input: "let k = func(x) { func(y) { y } } in k(1)(2)",
			want:  IntValue(2),
		},
		{
			name:  "later duplicate parameter wins",
			input: "func(x, x) { x }(1, 2)",
			want:  IntValue(2),
		},
		{
			name:  "arguments see the caller environment",
			input: "let x = 1 in func(x, y) { y }(2, x)",
			want:  IntValue(1),
		},
		{
			name:  "function bodies use dynamic scope",
			input: "let f = func() { y } in let y = 5 in f()",
			want:  IntValue(5),
		},
		{
			name:  "inner let shadows outer",
			input: "let x = 1 in let x = 2 in x",
			want:  IntValue(2),
		},
		{
			name:  "tag escapes strings",
			input: `<a>{ "<b>" }</a>`,
			want:  HTMLValue("<a>&lt;b&gt;</a>"),
		},
		{
			name:  "ampersand escaped once",
			input: `<a>{ "a & <b>" }</a>`,
			want:  HTMLValue("<a>a &amp; &lt;b&gt;</a>"),
		},
		{
			name:  "nested tags are not escaped",
			input: `<a><b>{ "x" }</b>{ "y" }</a>`,
			want:  HTMLValue("<a><b>x</b>y</a>"),
		},
		{
			name:  "empty tag",
			input: "<br></br>",
			want:  HTMLValue("<br></br>"),
		},
		{
			name:  "html passed through a function",
			input: `let wrap = func(h) { <div>{ h }</div> } in wrap(<p>{ "x" }</p>)`,
			want:  HTMLValue("<div><p>x</p></div>"),
		},
		{
			name:  "globals",
			input: "<p>{ name }</p>",
			opts: []Option{WithGlobals(NewEnv(
				Binding{Name: "name", Value: StringValue("Ada & Bob")},
			))},
			want: HTMLValue("<p>Ada &amp; Bob</p>"),
		},
		{
			name:  "let shadows globals",
			input: "let n = 2 in n",
			opts: []Option{WithGlobals(NewEnv(
				Binding{Name: "n", Value: IntValue(1)},
			))},
			want: IntValue(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, trace, err := EvaluateString(t.Context(), tt.input, tt.opts...)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("got %s (%s), want %s (%s)",
					got, got.Type, tt.want, tt.want.Type)
			}

			if err := trace.Validate(); err != nil {
				t.Errorf("invalid trace: %v", err)
			}
		})
	}
}

func TestEvaluate_FunctionValue(t *testing.T) {
	got, _, err := EvaluateString(t.Context(), "func(a, b) { <p>{ a }</p> }")
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if got.Type != TypeFunction {
		t.Fatalf("type = %s, want Function", got.Type)
	}

	if diff := cmp.Diff([]string{"a", "b"}, got.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	if want := "func(a, b) { <p>{ a }</p> }"; got.String() != want {
		t.Errorf("String() = %q, want %q", got.String(), want)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		opts   []Option
		reason EvalReason
		rng    Range
		check  func(t *testing.T, e *EvalError)
	}{
		{
			name:   "unbound variable",
			input:  "x",
			reason: ReasonVariableMissing,
			rng:    Range{0, 1},
			check: func(t *testing.T, e *EvalError) {
				if e.Name != "x" {
					t.Errorf("name = %q, want x", e.Name)
				}
			},
		},
		{
			name:   "let binding is not visible to siblings",
			input:  "let f = func(a, b) { b } in f(let x = 1 in x, x)",
			reason: ReasonVariableMissing,
			rng:    Range{46, 47},
		},
		{
			name:   "returned function does not capture parameters",
			input:  "let k = func(x) { func(y) { x } } in k(1)(2)",
			reason: ReasonVariableMissing,
			rng:    Range{28, 29},
		},
		{
			name:   "call a non-function",
			input:  "1(2)",
			reason: ReasonExpectedFunction,
			rng:    Range{0, 4},
			check: func(t *testing.T, e *EvalError) {
				if !e.Got.Equal(IntValue(1)) {
					t.Errorf("got = %s, want 1", e.Got)
				}
			},
		},
		{
			name:   "too many arguments",
			input:  "func(x){ x }(1, 2)",
			reason: ReasonWrongNumberOfArguments,
			rng:    Range{0, 18},
			check: func(t *testing.T, e *EvalError) {
				if e.Expected != 1 || e.Count != 2 {
					t.Errorf("expected/got = %d/%d, want 1/2", e.Expected, e.Count)
				}
			},
		},
		{
			name:   "too few arguments",
			input:  "let f = func(a, b) { a } in f(1)",
			reason: ReasonWrongNumberOfArguments,
			rng:    Range{28, 32},
		},
		{
			name:   "int inside tag",
			input:  "<a>{ 1 }</a>",
			reason: ReasonTypeError,
			rng:    Range{5, 6},
			check: func(t *testing.T, e *EvalError) {
				if !strings.Contains(e.Description, "Int") {
					t.Errorf("description = %q, want mention of Int", e.Description)
				}
			},
		},
		{
			name:   "function inside tag",
			input:  "<a>{ func() { 1 } }</a>",
			reason: ReasonTypeError,
			rng:    Range{5, 17},
		},
		{
			name:   "runaway recursion",
			input:  "let f = func(g) { g(g) } in f(f)",
			opts:   []Option{WithMaxDepth(64)},
			reason: ReasonRecursionLimitExceeded,
			check: func(t *testing.T, e *EvalError) {
				if e.Expected != 64 {
					t.Errorf("limit = %d, want 64", e.Expected)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, trace, err := EvaluateString(t.Context(), tt.input, tt.opts...)
			if err == nil {
				t.Fatal("expected error")
			}

			var ee *EvalError
			if !errors.As(err, &ee) {
				t.Fatalf("expected *EvalError, got %T: %v", err, err)
			}

			if ee.Reason != tt.reason {
				t.Errorf("reason = %s, want %s", ee.Reason, tt.reason)
			}

			if tt.rng != (Range{}) && ee.Range != tt.rng {
				t.Errorf("range = %s, want %s", ee.Range, tt.rng)
			}

			if ee.Source != tt.input {
				t.Errorf("source = %q, want %q", ee.Source, tt.input)
			}

			if !errors.Is(err, tt.reason.sentinel()) {
				t.Errorf("errors.Is(err, %v) = false", tt.reason.sentinel())
			}

			if len(trace) == 0 {
				t.Error("expected a trace on failure")
			}

			if err := trace.Validate(); err != nil {
				t.Errorf("invalid trace: %v", err)
			}

			if tt.check != nil {
				tt.check(t, ee)
			}
		})
	}
}

func TestEvaluate_NoDepthLimit(t *testing.T) {
	// 200 nested tags evaluate 200 levels deep.
	src := strings.Repeat("<a>", 200) + strings.Repeat("</a>", 200)

	_, _, err := EvaluateString(t.Context(), src, WithMaxDepth(100))
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion limit, got %v", err)
	}

	_, _, err = EvaluateString(t.Context(), src, WithMaxDepth(0))
	if err != nil {
		t.Fatalf("expected no limit, got %v", err)
	}
}

func TestEvalError_Diagnostic(t *testing.T) {
	_, _, err := EvaluateString(t.Context(), "<p>{ missing }</p>")

	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EvalError, got %v", err)
	}

	want := "evaluation error at line 1, column 6: variable not bound \"missing\"\n" +
		"  1 | <p>{ missing }</p>\n" +
		"           ^~~~~~~\n"

	if diff := cmp.Diff(want, ee.Diagnostic()); diff != "" {
		t.Errorf("Diagnostic() mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_ParseFailure(t *testing.T) {
	_, trace, err := EvaluateString(t.Context(), "let")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	if trace != nil {
		t.Errorf("expected no trace, got %d events", len(trace))
	}
}
