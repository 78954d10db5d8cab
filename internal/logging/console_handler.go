package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

// consoleHandler writes a human-oriented header line per record, then each
// remaining field on its own indented line:
//
//	2026-10-17 20:14:03 INFO [play] Session 1a2b3c4d · Round 2 – comparison recorded
//	    winner: kick 01.wav
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    []string
	preset    []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = slices.Clone(h.preset)
	for _, a := range attrs {
		next.preset = appendFlat(next.preset, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = append(slices.Clone(h.prefix), name)
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := slices.Clone(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendFlat(fields, h.prefix, a)
		return true
	})
	fields = lastValueWins(fields)

	var component, sessionID, round string
	rest := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = plain(f.value)
		case FieldSessionID:
			sessionID = plain(f.value)
		case FieldRound:
			round = plain(f.value)
		default:
			rest = append(rest, f)
		}
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(logTimestampLayout))
	b.WriteString(" " + levelLabel(r.Level))
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	if subject := subjectLabel(sessionID, round); subject != "" {
		b.WriteString(" " + subject)
	}
	b.WriteString(" – " + msg)
	if h.addSource {
		if src := r.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
	for _, f := range rest {
		fmt.Fprintf(&b, "    %s: %s\n", f.key, quoted(f.value))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// subjectLabel renders "Session 1a2b3c4d · Round 2" using the first segment of
// the session UUID.
func subjectLabel(sessionID, round string) string {
	var parts []string
	if id := strings.TrimSpace(sessionID); id != "" {
		short, _, _ := strings.Cut(id, "-")
		parts = append(parts, "Session "+short)
	}
	if r := strings.TrimSpace(round); r != "" {
		parts = append(parts, "Round "+r)
	}
	return strings.Join(parts, " · ")
}

// appendFlat expands groups into dotted keys.
func appendFlat(dst []field, prefix []string, a slog.Attr) []field {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = append(slices.Clone(prefix), a.Key)
		}
		for _, ga := range v.Group() {
			dst = appendFlat(dst, inner, ga)
		}
		return dst
	}
	key := a.Key
	if len(prefix) > 0 {
		key = strings.Join(prefix, ".") + "." + key
	}
	return append(dst, field{key: key, value: v})
}

// lastValueWins collapses repeated keys, keeping the first position.
func lastValueWins(fields []field) []field {
	index := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// plain renders a value without quoting, for header slots.
func plain(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Local().Format(logTimestampLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

// quoted is plain with Go quoting for empty strings and values holding
// control characters or double quotes.
func quoted(v slog.Value) string {
	s := plain(v)
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < ' ' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
