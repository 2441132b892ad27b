// Package log provides a concurrency-safe leveled logging interface based on
// [log/slog].
//
// Time formatting, caller information, output format, and colorized output
// are applied at logger creation time using functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("evaluated", slog.Int("events", 12))
//	logger.Error("parse failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions use a default logger writing to [os.Stderr],
// which is reconfigured with [Config].
//
// # Context-Aware Logging
//
// Each level has a context-aware and a context-unaware variant. The
// context-unaware variants use [DefaultContextProvider], which returns
// [context.TODO] by default.
//
// # Supported Levels
//
// In addition to the four [log/slog] levels the package defines
// [LevelTrace] below [LevelDebug], used for per-node parser and evaluator
// events.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] are supported. With [WithPretty]
// text output is colorized using lipgloss when the output is a terminal and
// JSON output is indented.
package log
