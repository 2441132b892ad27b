package lang

import "github.com/ardnew/tagfn/log"

// DefaultMaxDepth is the default evaluation nesting ceiling.
// Users may modify this before evaluating to change the default.
var DefaultMaxDepth = 10000

// config holds parse and evaluation settings.
type config struct {
	logger   log.Logger // structured logger, zero value discards
	globals  *Env       // seed environment for evaluation
	maxDepth int        // 0 disables the ceiling
	cache    bool       // memoise parse results by source hash
}

// Option configures parsing or evaluation behavior.
type Option func(*config)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxDepth sets the maximum number of nested node evaluations.
// Exceeding it fails evaluation with [ReasonRecursionLimitExceeded].
// A depth of zero or less removes the ceiling.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithGlobals sets the environment the root expression is evaluated in.
// The default is the empty environment.
func WithGlobals(env *Env) Option {
	return func(c *config) {
		c.globals = env
	}
}

// WithCache enables memoisation of parse results keyed by source content.
func WithCache(enable bool) Option {
	return func(c *config) {
		c.cache = enable
	}
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
