package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by source hash.
// Trees are immutable once built, so cached roots are shared between callers.
var globalCache sync.Map

// state tracks the parse of one source text.
type state struct {
	once   sync.Once
	source string
	root   *Node
	err    error
}

// ParseReader reads all of r and parses it.
// The content is parsed at most once per distinct source when [WithCache] is
// enabled.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Node, error) {
	source, err := ReadSource(r)
	if err != nil {
		return nil, err
	}

	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(source)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, source, opts...)
}

// ReadSource reads all of r as source text.
// Read failures are wrapped in [ErrReadInput].
func ReadSource(r io.Reader) (string, error) {
	// Wrap reader with async read-ahead so input is fetched while buffering.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return string(data), nil
}

// parseCached parses source once and returns the memoised result thereafter.
func parseCached(ctx context.Context, source string, cfg config) (*Node, error) {
	hash := xxh3.HashString(source)
	key := strconv.FormatUint(hash, 36)

	value, hit := globalCache.LoadOrStore(key, &state{source: source})

	entry, ok := value.(*state)
	if !ok || entry.source != source {
		return parse(ctx, source, cfg)
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.root, entry.err = parse(ctx, source, cfg)
	})

	return entry.root, entry.err
}

// ClearCache removes all memoised parse results.
func ClearCache() {
	globalCache.Clear()
}
