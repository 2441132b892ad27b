// Package cmd implements the tagfn subcommands.
//
//	eval   evaluate a program and print its value (default)
//	parse  print the syntax tree of a program
//	trace  print the evaluation trace of a program
//	repl   evaluate expressions interactively
//
// Each command reads its program from a file, from stdin ("-"), or from the
// text given with -e. Evaluating commands accept --define NAME=EXPR to seed the
// global environment, where EXPR is an expr-lang expression that must produce
// an integer or a string.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// MaxDepthIdentifier is the kong variable identifier containing the
	// default evaluation nesting limit.
	MaxDepthIdentifier = "maxDepth"
)
