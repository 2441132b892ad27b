// Package cli contains the command line interface for tagfn.
//
// # Usage
//
// Programs are read from a file, from stdin ("-"), or from the -e flag:
//
//	tagfn page.tfn
//	tagfn eval -D 'title="Home"' -e '<h1>{ title }</h1>'
//	tagfn parse --format tree page.tfn
//	tagfn trace --format events --step 10 page.tfn
//	tagfn repl
//
// The eval command is the default when no command is named.
//
// # Configuration
//
// Flag defaults may be set in config.json or config.yaml under the user
// configuration directory (for example ~/.config/tagfn). See [resolve] for
// the YAML layout. Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output and indent JSON output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//		go build -tags pprof -o tagfn .
//
//	  - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//	    heap, mem, mutex, thread, trace)
//	  - --pprof-dir: Set profile output directory (default:
//	    ~/.cache/tagfn/pprof)
package cli
