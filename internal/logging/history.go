package logging

import (
	"log/slog"
	"sync"
	"time"
)

// LogEntry is one record kept for the log stream.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Context    Context        `json:"context"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	Module    string
	MinLevel  string
	SessionID uint64
}

// Match reports whether e passes f.
func (f Filter) Match(e LogEntry) bool {
	if f.Module != "" && e.Module != f.Module {
		return false
	}
	if f.SessionID != 0 && e.Context.SessionID != f.SessionID {
		return false
	}
	if floor, ok := parseLevel(f.MinLevel); ok {
		if lvl, known := parseLevel(e.Level); known && lvl < floor {
			return false
		}
	}
	return true
}

// History keeps the most recent entries, dropping the oldest once full.
type History struct {
	mu     sync.RWMutex
	ring   []LogEntry
	oldest int
	limit  int
}

// NewHistory returns a history holding up to limit entries.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{ring: make([]LogEntry, 0, limit), limit: limit}
}

// Add records e.
func (h *History) Add(e LogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.ring) < h.limit {
		h.ring = append(h.ring, e)
		return
	}
	h.ring[h.oldest] = e
	h.oldest = (h.oldest + 1) % h.limit
}

// Entries returns the entries passing f, oldest first.
func (h *History) Entries(f Filter) []LogEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []LogEntry
	for i := range h.ring {
		e := h.ring[(h.oldest+i)%len(h.ring)]
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ring)
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	case l >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
