package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tagfn/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document is a mapping from flag names to values:
//   - Nested mappings are flattened by joining keys with hyphens, so a
//     "log" mapping with a "level" key sets --log-level
//   - Underscores may be used in place of hyphens
//   - Sequences set repeatable flags such as --define
//   - Scalars are passed to Kong in their text form
//
// Example config file:
//
//	log:
//	  level: debug
//	  pretty: false
//	max_depth: 500
//	define:
//	  - site="tagfn"
//
// Command-line flags override config file values. A document that cannot be
// decoded is logged and ignored.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil {
			if err != io.EOF {
				log.WarnContext(ctx, "ignoring config file",
					slog.Any("error", err))
			}

			return config{}, nil
		}

		cfg := make(config, len(doc))
		cfg.flatten("", doc)

		log.TraceContext(ctx, "config loaded", slog.Int("keys", len(cfg)))

		return cfg, nil
	}
}

// config implements [kong.Resolver] for flattened YAML configs.
type config map[string]any

// flatten stores the leaves of m under hyphen-joined keys.
func (r config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		key = strings.ReplaceAll(strings.ToLower(key), "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch value := value.(type) {
		case map[string]any:
			r.flatten(key, value)

		case []any:
			list := make([]any, 0, len(value))
			for _, v := range value {
				list = append(list, scalar(v))
			}

			r[key] = list

		case nil:

		default:
			r[key] = scalar(value)
		}
	}
}

// scalar converts a decoded YAML scalar to a form Kong accepts for any flag
// type. Booleans are kept so negatable flags resolve correctly.
func scalar(v any) any {
	switch v := v.(type) {
	case string, bool:
		return v

	default:
		return fmt.Sprint(v)
	}
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
