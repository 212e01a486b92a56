package indicator

import (
	"testing"
)

func TestNewDisabled(t *testing.T) {
	ctrl := New(Config{}, newTestLogger())
	if _, ok := ctrl.(*noop); !ok {
		t.Errorf("New() with indicators disabled = %T, want noop", ctrl)
	}
}

func TestNewConfiguredLEDs(t *testing.T) {
	base := t.TempDir()
	ctrl := New(Config{Enabled: true, Call: "led0", Mute: "led1", SysfsPath: base}, newTestLogger())

	s, ok := ctrl.(*sysfs)
	if !ok {
		t.Fatalf("New() = %T, want sysfs", ctrl)
	}
	if s.base != base {
		t.Errorf("base = %q, want %q", s.base, base)
	}
	if s.leds[RoleCall] != "led0" || s.leds[RoleMute] != "led1" {
		t.Errorf("leds = %v", s.leds)
	}
}

func TestBoardLEDs(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"FriendlyElec NanoPC-T6", 2},
		{"Orange Pi 5 Plus", 2},
		{"Raspberry Pi 4 Model B Rev 1.4", 1},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := boardLEDs(tt.model, newTestLogger()); len(got) != tt.want {
			t.Errorf("boardLEDs(%q) = %v, want %d entries", tt.model, got, tt.want)
		}
	}
}

func TestDetectBoard(t *testing.T) {
	if model := detectBoard(); model == "" {
		t.Error("detectBoard() returned empty string")
	}
}
