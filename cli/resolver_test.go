package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolve_Flatten(t *testing.T) {
	doc := `
log:
  level: debug
  pretty: false
max_depth: 500
define:
  - a=1
  - b="x"
empty:
`

	res, err := resolve(t.Context())(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := config{
		"log-level":  "debug",
		"log-pretty": false,
		"max-depth":  "500",
		"define":     []any{"a=1", `b="x"`},
	}

	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, doc := range []string{"", "- not\n- a mapping\n", "key: [unclosed"} {
		res, err := resolve(t.Context())(strings.NewReader(doc))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", doc, err)
		}

		if cfg, ok := res.(config); !ok || len(cfg) != 0 {
			t.Errorf("%q: expected empty config, got %#v", doc, res)
		}
	}
}

func TestResolve_Kong(t *testing.T) {
	var cli struct {
		Level    string   `default:"info"`
		Pretty   bool     `default:"true" negatable:""`
		MaxDepth int      `default:"10"`
		Define   []string `sep:"none"`
	}

	cfg := config{
		"level":     "warn",
		"pretty":    false,
		"max-depth": "7",
		"define":    []any{"a=1", "b=2"},
	}

	parser, err := kong.New(&cli, kong.Resolvers(cfg))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	if _, err := parser.Parse([]string{"--level", "error"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cli.Level != "error" {
		t.Errorf("command line should override config: level = %q", cli.Level)
	}

	if cli.Pretty || cli.MaxDepth != 7 {
		t.Errorf("pretty = %v, max depth = %d", cli.Pretty, cli.MaxDepth)
	}

	if diff := cmp.Diff([]string{"a=1", "b=2"}, cli.Define); diff != "" {
		t.Errorf("define mismatch (-want +got):\n%s", diff)
	}
}
