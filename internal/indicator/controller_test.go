package indicator

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopController(t *testing.T) {
	ctrl := newNoop(newTestLogger())

	if err := ctrl.Set(RoleCall, true, "solid"); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if names := ctrl.Available(); len(names) != 0 {
		t.Errorf("Available() = %v, want empty slice", names)
	}
	if patterns := ctrl.Patterns(); len(patterns) != 0 {
		t.Errorf("Patterns() = %v, want empty slice", patterns)
	}
}

func TestSysfsController_Available(t *testing.T) {
	tests := []struct {
		name string
		leds map[string]string
		want []string
	}{
		{"call and fm", map[string]string{RoleCall: "usr_led", RoleFM: "sys_led"}, []string{"call", "fm"}},
		{"call only", map[string]string{RoleCall: "ACT"}, []string{"call"}},
		{"none", map[string]string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSysfs(t.TempDir(), tt.leds).Available()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSysfsController_SetWritesFiles(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "usr_led"), 0o755); err != nil {
		t.Fatal(err)
	}
	ctrl := newSysfs(base, map[string]string{RoleCall: "usr_led"})

	tests := []struct {
		on             bool
		pattern        string
		wantTrigger    string
		wantBrightness string
	}{
		{true, "blink", "heartbeat", "1"},
		{true, "solid", "none", "1"},
		{false, "", "none", "0"},
	}
	for _, tt := range tests {
		if err := ctrl.Set(RoleCall, tt.on, tt.pattern); err != nil {
			t.Fatalf("Set(%v, %q) error = %v", tt.on, tt.pattern, err)
		}
		trigger, _ := os.ReadFile(filepath.Join(base, "usr_led", "trigger"))
		brightness, _ := os.ReadFile(filepath.Join(base, "usr_led", "brightness"))
		if string(trigger) != tt.wantTrigger {
			t.Errorf("trigger = %q, want %q", trigger, tt.wantTrigger)
		}
		if string(brightness) != tt.wantBrightness {
			t.Errorf("brightness = %q, want %q", brightness, tt.wantBrightness)
		}
	}
}

func TestSysfsController_SetErrors(t *testing.T) {
	ctrl := newSysfs(t.TempDir(), map[string]string{RoleCall: "missing_led"})

	if err := ctrl.Set("nonexistent", true, ""); err == nil {
		t.Error("Set() with unknown role should return error")
	}
	if err := ctrl.Set(RoleCall, true, ""); err == nil {
		t.Error("Set() with missing sysfs node should return error")
	}
}
