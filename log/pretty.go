package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles holds the styles used to render one record.
type prettyStyles struct {
	key, str, num, bool, time, other lipgloss.Style
	level                            map[Level]lipgloss.Style
}

func makePrettyStyles(r *lipgloss.Renderer) prettyStyles {
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return prettyStyles{
		key:   color("8"),
		str:   color("6"),
		num:   color("3"),
		bool:  color("2"),
		time:  color("4"),
		other: color("5"),
		level: map[Level]lipgloss.Style{
			LevelTrace: color("8").Bold(true),
			LevelDebug: color("4").Bold(true),
			LevelInfo:  color("2").Bold(true),
			LevelWarn:  color("3").Bold(true),
			LevelError: color("1").Bold(true),
		},
	}
}

// prettyHandler renders records as colorized key=value text.
// Colors are enabled only when the output is a terminal.
type prettyHandler struct {
	opts   slog.HandlerOptions
	styles prettyStyles
	mu     *sync.Mutex
	w      io.Writer
	prefix string // group prefix for attribute keys
	attrs  []byte // preformatted attributes from WithAttrs
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		styles: makePrettyStyles(lipgloss.NewRenderer(w)),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}

	return level >= min
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		h.writeBuiltin(&buf, slog.Time(slog.TimeKey, r.Time))
	}

	h.writeBuiltin(&buf, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeBuiltin(&buf, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	h.writeBuiltin(&buf, slog.String(slog.MessageKey, r.Message))

	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer

	buf.Write(h.attrs)

	for _, a := range attrs {
		h.writeAttr(&buf, h.prefix, a)
	}

	c := *h
	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// writeBuiltin writes one of the record's built-in fields, applying
// ReplaceAttr as the standard handlers do.
func (h *prettyHandler) writeBuiltin(buf *bytes.Buffer, a slog.Attr) {
	if h.opts.ReplaceAttr != nil {
		if level, ok := a.Value.Any().(slog.Level); ok && a.Key == slog.LevelKey {
			key := a.Key
			a = h.opts.ReplaceAttr(nil, a)

			if a.Key == key {
				h.writeKey(buf, key)
				buf.WriteString(h.styles.levelStyle(Level(level)).Render(a.Value.String()))

				return
			}
		} else {
			a = h.opts.ReplaceAttr(nil, a)
		}
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	h.writeKey(buf, a.Key)
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range group {
			h.writeAttr(buf, prefix, g)
		}

		return
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	h.writeKey(buf, prefix+a.Key)
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeKey(buf *bytes.Buffer, key string) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(h.styles.key.Render(key + "="))
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(h.styles.str.Render(v.String()))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		buf.WriteString(h.styles.num.Render(v.String()))

	case slog.KindBool:
		buf.WriteString(h.styles.bool.Render(v.String()))

	case slog.KindTime:
		buf.WriteString(h.styles.time.Render(v.Time().Format("15:04:05.000")))

	default:
		buf.WriteString(h.styles.other.Render(v.String()))
	}
}

func (s prettyStyles) levelStyle(l Level) lipgloss.Style {
	if style, ok := s.level[l]; ok {
		return style
	}

	return s.other
}

// indentWriter reformats each JSON record written to it across multiple
// indented lines.
type indentWriter struct {
	w io.Writer
}

func (iw indentWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer

	if err := json.Indent(&buf, bytes.TrimSpace(p), "", "  "); err != nil {
		return iw.w.Write(p)
	}

	buf.WriteByte('\n')

	if _, err := iw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}

	return len(p), nil
}
