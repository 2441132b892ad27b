package cmd

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/tagfn/lang"
	"github.com/ardnew/tagfn/log"
	"github.com/ardnew/tagfn/pkg"
)

// Globals evaluates each NAME=EXPR definition with expr-lang and binds the
// results in order. An expression may refer to names defined before it.
// Results must be integers (or integral floats) or strings.
func Globals(ctx context.Context, defines ...string) (*lang.Env, error) {
	var env *lang.Env

	// Earlier results are visible to later expressions.
	scope := make(map[string]any, len(defines))

	for _, def := range defines {
		name, src, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !ok || strings.TrimSpace(src) == "" {
			return nil, pkg.ErrInvalidDefine.Wrapf("%q: expected NAME=EXPR", def)
		}

		if !lang.IsIdentifier(name) {
			return nil, pkg.ErrInvalidDefine.Wrapf("%q: invalid name %q", def, name)
		}

		program, err := expr.Compile(src, expr.Env(scope))
		if err != nil {
			return nil, pkg.ErrInvalidDefine.Wrapf("%q", def).Wrap(err)
		}

		out, err := expr.Run(program, scope)
		if err != nil {
			return nil, pkg.ErrInvalidDefine.Wrapf("%q", def).Wrap(err)
		}

		value, ok := toValue(out)
		if !ok {
			return nil, pkg.ErrInvalidDefine.Wrapf(
				"%q: expected an integer or string, got %T", def, out)
		}

		log.DebugContext(ctx, "define global",
			slog.String("name", name),
			slog.String("type", value.Type.String()),
			slog.String("value", value.String()))

		scope[name] = out
		env = env.Bind(name, value)
	}

	return env, nil
}

// toValue converts an expr-lang result to a template value.
func toValue(v any) (lang.Value, bool) {
	switch v := v.(type) {
	case string:
		return lang.StringValue(v), true

	case int:
		return lang.IntValue(int64(v)), true

	case int8:
		return lang.IntValue(int64(v)), true

	case int16:
		return lang.IntValue(int64(v)), true

	case int32:
		return lang.IntValue(int64(v)), true

	case int64:
		return lang.IntValue(v), true

	case uint:
		return fromUnsigned(uint64(v))

	case uint8:
		return lang.IntValue(int64(v)), true

	case uint16:
		return lang.IntValue(int64(v)), true

	case uint32:
		return lang.IntValue(int64(v)), true

	case uint64:
		return fromUnsigned(v)

	case float32:
		return fromFloat(float64(v))

	case float64:
		return fromFloat(v)

	default:
		return lang.Value{}, false
	}
}

func fromUnsigned(u uint64) (lang.Value, bool) {
	if u > math.MaxInt64 {
		return lang.Value{}, false
	}

	return lang.IntValue(int64(u)), true
}

func fromFloat(f float64) (lang.Value, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return lang.Value{}, false
	}

	return lang.IntValue(int64(f)), true
}
