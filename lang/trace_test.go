package lang

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func eventStrings(t Trace) []string {
	out := make([]string, len(t))
	for i, ev := range t {
		out[i] = ev.String()
	}

	return out
}

func TestTrace_Order(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "literal",
			input: "42",
			want:  []string{"Start(0, env=0)", "End(0, 42)"},
		},
		{
			name:  "let",
			input: "let x = 1 in x",
			want: []string{
				"Start(2, env=0)",
				"Start(0, env=0)",
				"End(0, 1)",
				"Start(1, env=1)",
				"End(1, 1)",
				"End(2, 1)",
			},
		},
		{
			name:  "uncalled function body is not visited",
			input: "func(x) { x }",
			want:  []string{"Start(1, env=0)", "End(1, func(x) { x })"},
		},
		{
			name:  "call visits callee then arguments then body",
			input: `func(a) { a }("s")`,
			want: []string{
				"Start(3, env=0)",
				"Start(1, env=0)",
				"End(1, func(a) { a })",
				"Start(2, env=0)",
				`End(2, "s")`,
				"Start(0, env=1)",
				`End(0, "s")`,
				`End(3, "s")`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, trace, err := EvaluateString(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if diff := cmp.Diff(tt.want, eventStrings(trace)); diff != "" {
				t.Errorf("trace mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTrace_Environment(t *testing.T) {
	root, err := Parse("let x = 1 in let y = 2 in y")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, trace, err := Evaluate(t.Context(), root)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	// The only variable node is the final y.
	index := root.Index()

	for _, ev := range trace {
		if ev.Kind != EventStart || index[ev.ID].Expr.Kind != KindVariable {
			continue
		}

		want := map[string]Value{"x": IntValue(1), "y": IntValue(2)}
		if diff := cmp.Diff(want, ev.Env.Map()); diff != "" {
			t.Errorf("environment mismatch (-want +got):\n%s", diff)
		}

		return
	}

	t.Fatal("no variable visited")
}

func TestTrace_StopsAtFailure(t *testing.T) {
	root, err := Parse("<a>{ x }{ y }</a>")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, trace, err := Evaluate(t.Context(), root)
	if !errors.Is(err, ErrVariableMissing) {
		t.Fatalf("expected missing variable, got %v", err)
	}

	type step struct {
		Kind EventKind
		ID   NodeID
	}

	got := make([]step, len(trace))
	for i, ev := range trace {
		got[i] = step{ev.Kind, ev.ID}
	}

	want := []step{
		{EventStart, 2},
		{EventStart, 0},
		{EventEnd, 0},
		{EventEnd, 2},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}

	for _, ev := range trace {
		if ev.Kind == EventEnd && ev.Err == nil {
			t.Errorf("End(%d) should carry the failure", ev.ID)
		}
	}
}

func TestTrace_Status(t *testing.T) {
	src := `let page = func(t) { <h1>{ t }</h1> } in <body>{ page("a") }{ page("b") }</body>`

	root, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, trace, err := Evaluate(t.Context(), root)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	for step := 0; step <= len(trace); step++ {
		started := make(map[NodeID]bool)
		ended := make(map[NodeID]bool)

		for _, ev := range trace[:step] {
			switch ev.Kind {
			case EventStart:
				started[ev.ID] = true

			case EventEnd:
				ended[ev.ID] = true
			}
		}

		for id, s := range trace.Status(step) {
			if !started[id] {
				t.Fatalf("step %d: node %d is %s without a Start", step, id, s.State)
			}

			if s.State == StateDone && !ended[id] {
				t.Fatalf("step %d: node %d is done without an End", step, id)
			}
		}
	}

	final := trace.Status(-1)

	if s := final[root.ID]; s.State != StateDone || s.Err != nil {
		t.Errorf("root status = %s, %v", s.State, s.Err)
	}

	if got := trace.Status(1)[root.ID]; got.State != StateInProgress {
		t.Errorf("root at step 1 = %s, want in progress", got.State)
	}

	if got := trace.Status(0); len(got) != 0 {
		t.Errorf("step 0 has %d started nodes", len(got))
	}
}

func TestTrace_StatusRepeatedVisit(t *testing.T) {
	root, err := Parse(`let f = func(x) { x } in <p>{ f("a") }{ f("b") }</p>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, trace, err := Evaluate(t.Context(), root)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	// The body of f is node 0; its latest visit returned "b".
	s := trace.Status(len(trace))[0]
	if s.State != StateDone || !s.Value.Equal(StringValue("b")) {
		t.Errorf("body status = %s %s, want done \"b\"", s.State, s.Value)
	}
}

func TestTrace_Validate(t *testing.T) {
	start := func(id NodeID) Event { return Event{Kind: EventStart, ID: id} }
	end := func(id NodeID) Event { return Event{Kind: EventEnd, ID: id} }

	tests := []struct {
		name  string
		trace Trace
		valid bool
	}{
		{"empty", Trace{}, true},
		{"nested", Trace{start(1), start(0), end(0), end(1)}, true},
		{"end without start", Trace{end(0)}, false},
		{"interleaved", Trace{start(0), start(1), end(0), end(1)}, false},
		{"unterminated", Trace{start(0)}, false},
		{"unknown kind", Trace{{Kind: EventKind(9)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trace.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.valid && !errors.Is(err, ErrInvalidTrace) {
				t.Errorf("expected ErrInvalidTrace, got %v", err)
			}
		})
	}
}

func TestTrace_ToNative(t *testing.T) {
	_, trace, err := EvaluateString(t.Context(), "let n = 3 in m")
	if err == nil {
		t.Fatal("expected error")
	}

	native := trace.ToNative()
	if len(native) != len(trace) {
		t.Fatalf("len = %d, want %d", len(native), len(trace))
	}

	last, ok := native[len(native)-1].(map[string]any)
	if !ok {
		t.Fatalf("unexpected element type %T", native[len(native)-1])
	}

	errMap, ok := last["error"].(map[string]any)
	if !ok {
		t.Fatalf("last event has no error: %v", last)
	}

	if errMap["reason"] != "VariableMissing" {
		t.Errorf("reason = %v", errMap["reason"])
	}

	startEnv := native[3].(map[string]any)["env"].(map[string]any)
	if _, ok := startEnv["n"]; !ok {
		t.Errorf("env at variable = %v, want n bound", startEnv)
	}
}
