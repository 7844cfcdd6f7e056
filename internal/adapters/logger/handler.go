package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/berth/internal/ui/output"
	"go.trai.ch/berth/internal/ui/style"
)

type levelMark struct {
	prefix string
	color  lipgloss.Color
}

// levelMarks is ordered from the most to the least severe level.
var levelMarks = []struct {
	min  slog.Level
	mark levelMark
}{
	{slog.LevelError, levelMark{prefix: style.Cross + " ", color: style.Red}},
	{slog.LevelWarn, levelMark{prefix: style.Warning + " ", color: style.Yellow}},
	{slog.LevelInfo, levelMark{color: style.Slate}},
	{slog.LevelDebug, levelMark{prefix: style.Dot + " ", color: style.Slate}},
}

func markFor(level slog.Level) levelMark {
	for _, lm := range levelMarks {
		if level >= lm.min {
			return lm.mark
		}
	}
	return levelMarks[len(levelMarks)-1].mark
}

// ConsoleHandler is a slog.Handler writing one colored line per record to a
// terminal. Attributes follow the message as key=value pairs.
type ConsoleHandler struct {
	out   *termenv.Output
	level slog.Leveler
	// attrs holds the attributes added by WithAttrs, already rendered.
	attrs  string
	prefix string
}

// NewConsoleHandler creates a ConsoleHandler writing to w, or to os.Stderr
// when w is nil. The level defaults to slog.LevelInfo.
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &ConsoleHandler{out: output.New(w), level: level}
}

// Enabled reports whether records at level are written.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as a single line.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	mark := markFor(r.Level)

	var b strings.Builder
	b.WriteString(mark.prefix)
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.prefix, attr)
		return true
	})

	line := h.out.String(b.String()).Foreground(termenv.RGBColor(string(mark.color)))
	_, err := h.out.WriteString(line.String() + "\n")
	return err
}

// WithAttrs returns a handler that appends attrs to every record.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	var b strings.Builder
	b.WriteString(h.attrs)
	for _, attr := range attrs {
		writeAttr(&b, h.prefix, attr)
	}

	clone := *h
	clone.attrs = b.String()
	return &clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// writeAttr appends " key=value" to b. Group values are flattened into
// dotted keys and values containing spaces are quoted.
func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			writeAttr(b, groupPrefix, child)
		}
		return
	}

	value := attr.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}

	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(value)
}
