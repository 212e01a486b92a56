package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/smazurov/audiohal/internal/halerr"
)

func resetLoggers() {
	std = newManager()
}

func TestModuleLevelOverride(t *testing.T) {
	resetLoggers()
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"routing": "debug",
			"api":     "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"routing", true, true, true},
		{"api", false, false, true},
		{"driver", false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			h := GetLogger(tt.module).Handler()
			ctx := context.Background()
			if got := h.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := h.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := h.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetLoggers()

	before := GetLogger("driver")
	if before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"driver": "debug"}})

	if GetLogger("driver") != before {
		t.Error("logger should be cached across Initialize")
	}
	if !before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("cached logger should follow the new module level")
	}
}

func TestHistoryNilBeforeInitialize(t *testing.T) {
	resetLoggers()
	if GetHistory() != nil {
		t.Error("history should not exist before Initialize")
	}
	// Records logged early are dropped, not a panic.
	GetLogger("api").Info("early")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"invalid", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseLevel(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseLevel(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("journal down") }

func TestFanoutKeepsWritingPastFailures(t *testing.T) {
	var buf bytes.Buffer
	debug := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	info := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	broken := failingHandler{info}

	logger := slog.New(fanout{broken, debug, info}).With(KeyModule, "routing")
	logger.Debug("debug only")
	if n := strings.Count(buf.String(), "debug only"); n != 1 {
		t.Errorf("debug record written %d times, want 1:\n%s", n, buf.String())
	}

	buf.Reset()
	err := fanout{broken, debug}.Handle(context.Background(), slog.Record{Level: slog.LevelInfo, Message: "routed"})
	if err == nil || !strings.Contains(err.Error(), "journal down") {
		t.Errorf("Handle() error = %v, want the journal failure", err)
	}
	if !strings.Contains(buf.String(), "routed") {
		t.Error("a failing handler must not stop the others")
	}
}

type journalCapture struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

func (c *journalCapture) send(message string, priority journal.Priority, fields map[string]string) error {
	c.message, c.priority, c.fields = message, priority, fields
	return nil
}

func TestJournalHandlerRoutingFields(t *testing.T) {
	var got journalCapture
	var level slog.LevelVar
	h := newJournalHandler(&level, got.send)

	logger := slog.New(h).With(KeyModule, "routing").WithGroup("open")
	logger.Error("Transport call failed",
		KeySessionID, uint64(12),
		KeyCategory, "playback",
		KeyUseCase, "HiFi",
		KeyDevices, "speaker",
		KeyError, halerr.New(halerr.DeviceUnavailable, "open failed"),
		"sample-rate", 48000)

	if got.message != "Transport call failed" || got.priority != journal.PriErr {
		t.Errorf("message = %q, priority = %v", got.message, got.priority)
	}
	want := map[string]string{
		"SYSLOG_IDENTIFIER": "audiohal",
		"MODULE":            "routing",
		"SESSION_ID":        "12",
		"CATEGORY":          "playback",
		"USE_CASE":          "HiFi",
		"DEVICES":           "speaker",
		"ERROR_CODE":        "DEVICE_UNAVAILABLE",
		"OPEN_ERROR":        "[DEVICE_UNAVAILABLE] open failed",
		"OPEN_SAMPLE_RATE":  "48000",
	}
	for k, v := range want {
		if got.fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, got.fields[k], v)
		}
	}
}

func TestJournalKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "devices", "DEVICES"},
		{"", "_private", "PRIVATE"},
		{"ROUTE", "sample-rate", "ROUTE_SAMPLE_RATE"},
		{"", "pcm.card", "PCM_CARD"},
	}
	for _, tt := range tests {
		if got := journalKey(tt.prefix, tt.key); got != tt.want {
			t.Errorf("journalKey(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}
