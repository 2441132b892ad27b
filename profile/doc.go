// Package profile provides optional runtime profiling for tagfn.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag [Profiler.Start] is a no-op and [Modes] is empty.
//
// # Usage
//
//	p := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	)
//	defer p.Start().Stop()
//
// Profile files are written to the configured directory with names matching
// the mode (cpu.pprof, mem.pprof, and so on). The tagfn command exposes this
// through --pprof-mode and --pprof-dir.
package profile
