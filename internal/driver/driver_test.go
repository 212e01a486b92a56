package driver

import (
	"io"
	"log/slog"
	"testing"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/session"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewNullBackend(t *testing.T) {
	tr, err := New(Config{Backend: "null"}, device.DefaultLayout(), newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "null" {
		t.Errorf("Name() = %q", tr.Name())
	}
	if _, ok := tr.(Mixer); !ok {
		t.Error("null transport should implement Mixer")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(Config{Backend: "pulse"}, device.DefaultLayout(), newTestLogger()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewAutoNeverFails(t *testing.T) {
	// Card 99 is not expected to exist, so auto falls back to null.
	tr, err := New(Config{Backend: "auto", Card: 99}, device.DefaultLayout(), newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "null" {
		t.Errorf("Name() = %q, want null", tr.Name())
	}
}

func TestNullRecordsCalls(t *testing.T) {
	n := NewNull(newTestLogger())
	l := device.DefaultLayout()

	play := &session.Session{ID: 1, Category: session.Playback}
	voice := &session.Session{ID: 2, Category: session.Voice}

	if err := n.Open(play); err != nil {
		t.Fatal(err)
	}
	_ = n.Route(voice, l.OutEarpiece|l.InBuiltinMic, device.ModeInCall, device.TTYOff)
	_ = n.StartVoiceCall(voice)
	_ = n.SetVoiceVolume(40)
	_ = n.SetMicMute(true)

	st := n.State()
	if st.OpenSessions != 2 || !st.VoiceCall {
		t.Errorf("state = %+v", st)
	}
	if st.LastRoute != l.OutEarpiece|l.InBuiltinMic {
		t.Errorf("last route = 0x%x", uint32(st.LastRoute))
	}
	if st.VoiceVolume != 40 || !st.MicMuted {
		t.Errorf("mixer state = %+v", st)
	}

	_ = n.Close(voice)
	if st := n.State(); st.VoiceCall || st.OpenSessions != 1 {
		t.Errorf("after close state = %+v", st)
	}
}

func TestParseControl(t *testing.T) {
	tests := []struct {
		in        string
		name, val string
		wantErr   bool
	}{
		{in: "SLIM_0_RX Voice Mixer CSVoice=1", name: "SLIM_0_RX Voice Mixer CSVoice", val: "1"},
		{in: " RX1 MIX1 INP1 = RX1 ", name: "RX1 MIX1 INP1", val: "RX1"},
		{in: "novalue", wantErr: true},
		{in: "=1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, val, err := parseControl(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil || name != tt.name || val != tt.val {
				t.Errorf("parseControl = %q, %q, %v", name, val, err)
			}
		})
	}
}
