package logging

import (
	"context"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

const journalIdentifier = "audiohal"

type journalSend func(message string, priority journal.Priority, vars map[string]string) error

// JournalHandler writes records to the systemd journal. Routing attributes
// become top level fields (SESSION_ID, CATEGORY, USE_CASE, DEVICES,
// ERROR_CODE) whatever group they were logged in, so
// `journalctl -t audiohal SESSION_ID=3` follows one session.
type JournalHandler struct {
	level  slog.Leveler
	prefix string
	fields map[string]string
	send   journalSend
}

// NewJournalHandler creates a journal handler at level.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return newJournalHandler(level, journal.Send)
}

func newJournalHandler(level slog.Leveler, send journalSend) *JournalHandler {
	return &JournalHandler{
		level:  level,
		fields: map[string]string{"SYSLOG_IDENTIFIER": journalIdentifier},
		send:   send,
	}
}

func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	fields := maps.Clone(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		journalFields(fields, h.prefix, a)
		return true
	})
	return h.send(r.Message, journalPriority(r.Level), fields)
}

func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = maps.Clone(h.fields)
	for _, a := range attrs {
		journalFields(next.fields, h.prefix, a)
	}
	return &next
}

func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = journalKey(h.prefix, name)
	return &next
}

// journalFields renders a into fields. Routing keys drop the group prefix.
func journalFields(fields map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	var ctx Context
	if ctx.absorb(a.Key, a.Value) {
		switch a.Key {
		case KeySessionID:
			fields["SESSION_ID"] = strconv.FormatUint(ctx.SessionID, 10)
		case KeyCategory:
			fields["CATEGORY"] = ctx.Category
		case KeyUseCase:
			fields["USE_CASE"] = ctx.UseCase
		case KeyDevices:
			fields["DEVICES"] = ctx.Devices
		}
		return
	}
	if ctx.ErrorCode != "" {
		fields["ERROR_CODE"] = ctx.ErrorCode
	}

	key := journalKey(prefix, a.Key)
	v := a.Value
	switch v.Kind() {
	case slog.KindGroup:
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range v.Group() {
			journalFields(fields, key, ga)
		}
	case slog.KindTime:
		fields[key] = v.Time().Format(time.RFC3339Nano)
	case slog.KindFloat64:
		fields[key] = strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	default:
		if msg, ok := errorText(v); ok {
			fields[key] = msg
		} else {
			fields[key] = v.String()
		}
	}
}

// journalKey builds a journal field name. Journal fields allow only
// uppercase letters, digits and underscores, and may not start with one.
func journalKey(prefix, key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
	mapped = strings.TrimLeft(mapped, "_")
	if prefix == "" {
		return mapped
	}
	return prefix + "_" + mapped
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}
