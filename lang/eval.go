package lang

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/tagfn/log"
)

// Evaluate walks root and returns its value along with the trace of every
// node visited.
//
// The trace is returned even when evaluation fails; it then ends with the End
// events of the failing node and each of its ancestors. On failure err is an
// *[EvalError].
//
// The context is used only for logging. Evaluation does not block and cannot
// be cancelled; use [WithMaxDepth] to bound runaway recursion.
func Evaluate(
	ctx context.Context,
	root *Node,
	opts ...Option,
) (Value, Trace, error) {
	cfg := makeConfig(opts...)

	ev := &evaluator{
		ctx:      ctx,
		logger:   cfg.logger,
		maxDepth: cfg.maxDepth,
	}

	cfg.logger.TraceContext(ctx, "evaluate start",
		slog.Int("globals", cfg.globals.Len()),
		slog.Int("max_depth", cfg.maxDepth))

	v, err := ev.eval(cfg.globals, root)
	if err != nil {
		cfg.logger.TraceContext(ctx, "evaluate failed",
			slog.Any("error", err),
			slog.Int("events", len(ev.trace)))

		return Value{}, ev.trace, err
	}

	cfg.logger.TraceContext(ctx, "evaluate complete",
		slog.String("type", v.Type.String()),
		slog.Int("events", len(ev.trace)))

	return v, ev.trace, nil
}

// EvaluateString parses source and evaluates the result.
// A parse failure is returned as a *[ParseError] with an empty trace.
func EvaluateString(
	ctx context.Context,
	source string,
	opts ...Option,
) (Value, Trace, error) {
	root, err := ParseString(ctx, source, opts...)
	if err != nil {
		return Value{}, nil, err
	}

	v, trace, err := Evaluate(ctx, root, opts...)

	if ee := (*EvalError)(nil); errors.As(err, &ee) {
		ee.Source = source
	}

	return v, trace, err
}

// evaluator holds the state of a single evaluation.
type evaluator struct {
	ctx      context.Context
	logger   log.Logger
	maxDepth int
	trace    Trace
	depth    int
}

// eval records the Start and End events around the evaluation of n.
func (ev *evaluator) eval(env *Env, n *Node) (Value, error) {
	ev.trace = append(ev.trace, Event{Kind: EventStart, ID: n.ID, Env: env})

	ev.depth++
	defer func() { ev.depth-- }()

	var (
		v   Value
		err error
	)

	if ev.maxDepth > 0 && ev.depth > ev.maxDepth {
		err = &EvalError{
			Range:    n.Range,
			Reason:   ReasonRecursionLimitExceeded,
			Expected: ev.maxDepth,
		}
	} else {
		v, err = ev.evalNode(env, n)
	}

	ev.trace = append(ev.trace, Event{Kind: EventEnd, ID: n.ID, Value: v, Err: err})

	return v, err
}

func (ev *evaluator) evalNode(env *Env, n *Node) (Value, error) {
	e := n.Expr

	switch e.Kind {
	case KindInt:
		return IntValue(e.Int), nil

	case KindString:
		return StringValue(e.Str), nil

	case KindVariable:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return Value{}, &EvalError{
				Range:  n.Range,
				Reason: ReasonVariableMissing,
				Name:   e.Name,
			}
		}

		return v, nil

	case KindFunction:
		return FunctionValue(e.Params, e.Body), nil

	case KindLet:
		v, err := ev.eval(env, e.Value)
		if err != nil {
			return Value{}, err
		}

		return ev.eval(env.Bind(e.Name, v), e.Body)

	case KindCall:
		return ev.evalCall(env, n)

	case KindTag:
		return ev.evalTag(env, n)

	default:
		panic("lang: unknown expression kind " + e.Kind.String())
	}
}

// evalCall applies a function value under dynamic scope: the body sees the
// caller's environment extended with the parameter bindings.
func (ev *evaluator) evalCall(env *Env, n *Node) (Value, error) {
	e := n.Expr

	fn, err := ev.eval(env, e.Callee)
	if err != nil {
		return Value{}, err
	}

	if fn.Type != TypeFunction {
		return Value{}, &EvalError{
			Range:  n.Range,
			Reason: ReasonExpectedFunction,
			Got:    fn,
		}
	}

	if len(fn.Params) != len(e.Args) {
		return Value{}, &EvalError{
			Range:    n.Range,
			Reason:   ReasonWrongNumberOfArguments,
			Expected: len(fn.Params),
			Count:    len(e.Args),
		}
	}

	// Arguments are all evaluated in the caller's environment before any
	// parameter is bound.
	args := make([]Value, len(e.Args))

	for i, arg := range e.Args {
		v, err := ev.eval(env, arg)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	call := env
	for i, name := range fn.Params {
		call = call.Bind(name, args[i])
	}

	ev.logger.TraceContext(ev.ctx, "apply function",
		slog.Int("node", int(n.ID)),
		slog.Int("arity", len(args)))

	return ev.eval(call, fn.Body)
}

func (ev *evaluator) evalTag(env *Env, n *Node) (Value, error) {
	e := n.Expr

	buf := make([]byte, 0, 2*len(e.Name)+5)
	buf = append(buf, '<')
	buf = append(buf, e.Name...)
	buf = append(buf, '>')

	for _, child := range e.Children {
		v, err := ev.eval(env, child)
		if err != nil {
			return Value{}, err
		}

		switch v.Type {
		case TypeHTML:
			buf = append(buf, v.Str...)

		case TypeString:
			buf = append(buf, EscapeHTML(v.Str)...)

		default:
			return Value{}, &EvalError{
				Range:  child.Range,
				Reason: ReasonTypeError,
				Description: "expected Html or String, got " +
					v.Type.String() + " " + v.String(),
			}
		}
	}

	buf = append(buf, "</"...)
	buf = append(buf, e.Name...)
	buf = append(buf, '>')

	return HTMLValue(string(buf)), nil
}
