package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/journal"
)

const historySize = 1000

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// levelOf returns the configured level for module, falling back to the
// global level and then to info.
func (c Config) levelOf(module string) slog.Level {
	if l, ok := parseLevel(c.Modules[module]); ok {
		return l
	}
	if l, ok := parseLevel(c.Level); ok {
		return l
	}
	return slog.LevelInfo
}

// manager owns the module loggers. Each module keeps its logger for the life
// of the process; Initialize only moves its level.
type manager struct {
	mu       sync.RWMutex
	cfg      Config
	ready    bool
	loggers  map[string]*slog.Logger
	levels   map[string]*slog.LevelVar
	global   slog.LevelVar
	history  *History
	callback LogCallback
}

func newManager() *manager {
	return &manager{
		loggers: make(map[string]*slog.Logger),
		levels:  make(map[string]*slog.LevelVar),
	}
}

var std = newManager()

func (m *manager) initialize(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = cfg
	m.ready = true
	m.history = NewHistory(historySize)
	m.global.Set(cfg.levelOf(""))
	for module, lv := range m.levels {
		lv.Set(cfg.levelOf(module))
	}
	slog.SetDefault(slog.New(newHandler(cfg.Format, &m.global)))
}

func (m *manager) logger(module string) *slog.Logger {
	m.mu.RLock()
	l, ok := m.loggers[module]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}
	lv := &slog.LevelVar{}
	format := "text"
	if m.ready {
		lv.Set(m.cfg.levelOf(module))
		format = m.cfg.Format
	}
	l = slog.New(newHandler(format, lv)).With(KeyModule, module)
	m.loggers[module] = l
	m.levels[module] = lv
	return l
}

func (m *manager) sink() (*History, LogCallback) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history, m.callback
}

// Initialize applies cfg. Loggers handed out earlier keep their handler and
// pick up the new level.
func Initialize(cfg Config) {
	std.initialize(cfg)
}

// GetLogger returns the logger for module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	return std.logger(module)
}

// GetHistory returns the recent entries kept for the log stream, or nil
// before Initialize.
func GetHistory() *History {
	h, _ := std.sink()
	return h
}

// SetLogCallback sets the function receiving every new entry.
func SetLogCallback(callback LogCallback) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.callback = callback
}

// newHandler writes to stdout when something is listening on it, to the
// journal when it is running, and always to the history.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	var stdout slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if format == "json" {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	}

	var out fanout
	if stdoutAttached() {
		out = append(out, stdout)
	}
	if journal.Enabled() {
		out = append(out, NewJournalHandler(level))
	}
	return append(out, newStreamHandler(level))
}

// stdoutAttached reports whether stdout is a terminal, pipe, socket or file
// rather than /dev/null.
func stdoutAttached() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
