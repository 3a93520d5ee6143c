package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	15:04:05.000 INFO  [3f2a9c1e] playback: phrase changed (#2 Jane @00:02.500) rate=1
//
// The bracketed session, component and parenthesised cue are lifted out of
// the attributes; everything else follows as key=value pairs.
type consoleHandler struct {
	w      io.Writer
	level  slog.Leveler
	source bool
	prefix string
	fields []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, source bool) *consoleHandler {
	return &consoleHandler{w: w, level: level, source: source}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = slices.Clone(h.fields)
	for _, a := range attrs {
		next.fields = appendField(next.fields, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := slices.Clone(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})
	head, rest := splitHead(fields)

	var buf bytes.Buffer
	if !r.Time.IsZero() {
		buf.WriteString(r.Time.Format("15:04:05.000"))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(&buf, "%-5s ", r.Level.String())
	if head.session != "" {
		buf.WriteString("[" + head.session + "] ")
	}
	if head.component != "" {
		buf.WriteString(head.component + ": ")
	}
	buf.WriteString(r.Message)
	if cue := head.cue(); cue != "" {
		buf.WriteString(" (" + cue + ")")
	}
	for _, f := range rest {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(consoleValue(f.value))
	}
	if h.source && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			fmt.Fprintf(&buf, " <%s:%d>", filepath.Base(frame.File), frame.Line)
		}
	}
	buf.WriteByte('\n')
	_, err := h.w.Write(buf.Bytes())
	return err
}

// lineHead holds the attributes rendered ahead of the key=value tail.
type lineHead struct {
	component string
	session   string
	phrase    string
	speaker   string
	position  string
}

func (h lineHead) cue() string {
	parts := make([]string, 0, 3)
	if h.phrase != "" {
		parts = append(parts, "#"+h.phrase)
	}
	if h.speaker != "" {
		parts = append(parts, h.speaker)
	}
	if h.position != "" {
		parts = append(parts, "@"+h.position)
	}
	return strings.Join(parts, " ")
}

func splitHead(fields []field) (lineHead, []field) {
	var hd lineHead
	rest := fields[:0:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			hd.component = f.value.String()
		case FieldSessionID:
			hd.session = shortID(f.value.String())
		case FieldPhraseIndex:
			hd.phrase = f.value.String()
		case FieldSpeaker:
			hd.speaker = f.value.String()
		case FieldPosition:
			if f.value.Kind() != slog.KindDuration {
				rest = append(rest, f)
				continue
			}
			hd.position = clock(f.value.Duration())
		default:
			rest = append(rest, f)
		}
	}
	return hd, rest
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() != slog.KindGroup {
		return append(dst, field{key: prefix + a.Key, value: a.Value})
	}
	if a.Key != "" {
		prefix += a.Key + "."
	}
	for _, member := range a.Value.Group() {
		dst = appendField(dst, prefix, member)
	}
	return dst
}

func consoleValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// clock renders an audio position as mm:ss.mmm.
func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
