package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/pkg"
)

type testCLI struct {
	Eval  Eval  `cmd:"" default:"withargs"`
	Parse Parse `cmd:""`
	Trace Trace `cmd:""`
}

// run executes args against the subcommands and returns what they wrote.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var (
		cli      testCLI
		out, msg bytes.Buffer
	)

	ctx := t.Context()

	parser, err := kong.New(&cli,
		kong.Writers(&out, &msg),
		kong.Exit(func(int) { t.Fatalf("unexpected exit: %s", msg.String()) }),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.Vars{
			MaxDepthIdentifier: "10000",
			CacheIdentifier:    t.TempDir(),
		},
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}

	ctx = WithContext(ctx, ktx)
	err = ktx.Run()

	return out.String(), msg.String(), err
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"int", []string{"eval", "-e", "let x = 1 in x"}, "1\n"},
		{"default command", []string{"-e", `"s"`}, "\"s\"\n"},
		{
			"html",
			[]string{"eval", "-e", `<p>{ "a < b" }</p>`},
			"<p>a &lt; b</p>\n",
		},
		{
			"string define",
			[]string{"eval", "-D", `name="Ada"`, "-e", "<p>{ name }</p>"},
			"<p>Ada</p>\n",
		},
		{
			"arithmetic define",
			[]string{"eval", "--define", "n=2*21", "-e", "n"},
			"42\n",
		},
		{
			"defines see earlier defines",
			[]string{"eval", "-D", "a=2", "-D", "b=a*3", "-e", "b"},
			"6\n",
		},
		{
			"integral float define",
			[]string{"eval", "-D", "half=10/2", "-e", "half"},
			"5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestEval_Sources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.tfn")
	if err := os.WriteFile(path, []byte("let n = 7 in\nn\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "eval", path)
	if err != nil || out != "7\n" {
		t.Errorf("file: got %q, %v", out, err)
	}

	saved := stdin
	t.Cleanup(func() { stdin = saved })

	stdin = strings.NewReader(`<i>{ "x" }</i>`)

	out, _, err = run(t, "eval", "-")
	if err != nil || out != "<i>x</i>\n" {
		t.Errorf("stdin: got %q, %v", out, err)
	}

	_, _, err = run(t, "eval", filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, pkg.ErrReadInput) {
		t.Errorf("missing file: expected ErrReadInput, got %v", err)
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		target error
		stderr string
	}{
		{
			"parse error",
			[]string{"eval", "-e", "let"},
			ErrParse,
			"parse error at line 1",
		},
		{
			"evaluation error",
			[]string{"eval", "-e", "<p>{ who }</p>"},
			ErrEvaluate,
			"^~~",
		},
		{
			"recursion limit",
			[]string{"eval", "--max-depth", "3", "-e", "<a><b><c><d></d></c></b></a>"},
			lang.ErrRecursionLimit,
			"",
		},
		{"define without value", []string{"eval", "-D", "x", "-e", "1"}, pkg.ErrInvalidDefine, ""},
		{"define bad name", []string{"eval", "-D", "let=1", "-e", "1"}, pkg.ErrInvalidDefine, ""},
		{"define bad type", []string{"eval", "-D", "x=[1]", "-e", "1"}, pkg.ErrInvalidDefine, ""},
		{"define fraction", []string{"eval", "-D", "x=1/3", "-e", "1"}, pkg.ErrInvalidDefine, ""},
		{"define syntax", []string{"eval", "-D", "x=1 +", "-e", "1"}, pkg.ErrInvalidDefine, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := run(t, tt.args...)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}

			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestEval_ShowTrace(t *testing.T) {
	_, stderr, err := run(t, "eval", "--show-trace", "-e", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "Start(0, env=0)\nEnd(0, 42)\n"; stderr != want {
		t.Errorf("got %q, want %q", stderr, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"native", []string{"parse", "-e", "f( 1 ,x)"}, []string{"f(1, x)\n"}},
		{"json", []string{"parse", "-f", "json", "-e", "1"}, []string{`"kind": "IntLiteral"`}},
		{"json ranges", []string{"parse", "-f", "json", "--ranges", "-e", "1"}, []string{`"range"`, `"id"`}},
		{"yaml", []string{"parse", "-f", "yaml", "-e", "x"}, []string{"kind: Variable", "name: x"}},
		{"tree", []string{"parse", "-f", "tree", "-e", "<p>{ v }</p>"}, []string{"Tag <p>", "Variable v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output %q does not contain %q", out, want)
				}
			}
		})
	}
}

func TestTrace(t *testing.T) {
	out, _, err := run(t, "trace", "-f", "events", "-e", "let x = 1 in x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := strings.Count(out, "\n"); n != 6 {
		t.Errorf("got %d events:\n%s", n, out)
	}

	out, _, err = run(t, "trace", "-f", "json", "--step", "2", "-e", "let x = 1 in x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events []any
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}

	out, _, err = run(t, "trace", "-e", "<p>{ y }</p>")
	if !errors.Is(err, ErrEvaluate) {
		t.Errorf("expected ErrEvaluate, got %v", err)
	}

	if !strings.Contains(out, "✗ VariableMissing") {
		t.Errorf("view does not show the failure:\n%s", out)
	}
}

func TestGlobals(t *testing.T) {
	env, err := Globals(t.Context(), "a=1", "s='x' + 'y'", "a=a+1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := env.Lookup("a"); !v.Equal(lang.IntValue(2)) {
		t.Errorf("a = %s, want 2", v)
	}

	if v, _ := env.Lookup("s"); !v.Equal(lang.StringValue("xy")) {
		t.Errorf("s = %s, want \"xy\"", v)
	}

	if env, err := Globals(t.Context()); err != nil || env.Len() != 0 {
		t.Errorf("no defines: %v, %v", env, err)
	}
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := ErrWriteOutput.Wrap(cause)

	if !errors.Is(err, ErrWriteOutput) || !errors.Is(err, cause) {
		t.Errorf("errors.Is failed for %v", err)
	}

	if got := err.Error(); got != "write output: boom" {
		t.Errorf("Error() = %q", got)
	}

	in := ErrParse.In("eval").Wrap(cause)
	if !errors.Is(in, ErrParse) || errors.Is(in, ErrEvaluate) {
		t.Errorf("errors.Is failed for %v", in)
	}

	if got := in.Error(); got != "eval: parse failed: boom" {
		t.Errorf("Error() = %q", got)
	}

	if ErrParse.command != "" {
		t.Error("In modified the sentinel")
	}
}
