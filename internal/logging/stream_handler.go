package logging

import (
	"context"
	"log/slog"
	"maps"
	"time"
)

// LogCallback receives every entry as it is recorded. main wires it to the
// event bus, which this package cannot import.
type LogCallback func(entry LogEntry)

// streamHandler records entries into the shared history and hands them to
// the callback. Attributes added through WithAttrs are resolved once into
// base.
type streamHandler struct {
	level  slog.Leveler
	prefix string
	base   LogEntry
}

func newStreamHandler(level slog.Leveler) *streamHandler {
	return &streamHandler{level: level, base: LogEntry{Module: "app"}}
}

func (h *streamHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *streamHandler) Handle(_ context.Context, r slog.Record) error {
	history, callback := std.sink()
	if history == nil {
		return nil
	}

	entry := h.base
	entry.Attributes = maps.Clone(h.base.Attributes)
	entry.Timestamp = r.Time
	entry.Level = levelName(r.Level)
	entry.Message = r.Message
	r.Attrs(func(a slog.Attr) bool {
		collect(&entry, h.prefix, a)
		return true
	})

	history.Add(entry)
	if callback != nil {
		callback(entry)
	}
	return nil
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.base.Attributes = maps.Clone(h.base.Attributes)
	for _, a := range attrs {
		collect(&next.base, h.prefix, a)
	}
	return &next
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

// collect stores a in e. Routing keys land in e.Context at any group depth.
func collect(e *LogEntry, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if prefix == "" && a.Key == KeyModule {
		e.Module = a.Value.String()
		return
	}
	if e.Context.absorb(a.Key, a.Value) {
		return
	}

	key := joinKey(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range a.Value.Group() {
			collect(e, key, ga)
		}
		return
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	switch a.Value.Kind() {
	case slog.KindTime:
		e.Attributes[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		e.Attributes[key] = a.Value.Duration().String()
	default:
		if msg, ok := errorText(a.Value); ok {
			e.Attributes[key] = msg
		} else {
			e.Attributes[key] = a.Value.Any()
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
