package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/routing"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	f, err := LoadFile(t.TempDir() + "/absent.toml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Devices != device.DefaultLayout() {
		t.Error("expected default layout")
	}
	if f.Sequencer.Backend != SequencerMemory {
		t.Errorf("sequencer backend = %q", f.Sequencer.Backend)
	}
}

func TestLoadFileOverlaysTables(t *testing.T) {
	path := writeTemp(t, `
[server]
port = ":9000"

[devices]
speaker = 0x10000000

[session]
voice_sample_rate = 16000
voice_latency = "40ms"
record_latency = 120

[driver]
backend = "null"
voice_pcm = "hw:0,2"

[driver.endpoints]
speaker = "hw:0,0"

[sequencer]
backend = "file"
state_path = "/run/audiohal/ucm.toml"

[indicators]
enabled = true
call = "led:green"
`)

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if f.Devices.OutSpeaker != 0x10000000 {
		t.Errorf("speaker = 0x%x", uint32(f.Devices.OutSpeaker))
	}
	if f.Devices.OutEarpiece != device.DefaultLayout().OutEarpiece {
		t.Error("unrelated layout entries must keep their default")
	}

	if f.Session.VoiceSampleRate != 16000 {
		t.Errorf("voice rate = %d", f.Session.VoiceSampleRate)
	}
	if f.Session.VoiceLatency != 40*time.Millisecond {
		t.Errorf("voice latency = %v", f.Session.VoiceLatency)
	}
	if f.Session.RecordLatency != 120*time.Millisecond {
		t.Errorf("record latency = %v", f.Session.RecordLatency)
	}
	if f.Session.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want default", f.Session.SampleRate)
	}

	if f.Driver.Backend != "null" || f.Driver.VoicePCM != "hw:0,2" {
		t.Errorf("driver = %+v", f.Driver)
	}
	if f.Driver.Endpoints["speaker"] != "hw:0,0" {
		t.Errorf("endpoints = %v", f.Driver.Endpoints)
	}
	if f.Sequencer.Backend != SequencerFile || f.Sequencer.StatePath == "" {
		t.Errorf("sequencer = %+v", f.Sequencer)
	}
	if !f.Indicators.Enabled || f.Indicators.Call != "led:green" {
		t.Errorf("indicators = %+v", f.Indicators)
	}
}

func TestLoadFileRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"shared bit", "[devices]\nspeaker = 0x1\n", "already assigned"},
		{"multi bit", "[devices]\nspeaker = 0x3\n", "not a single bit"},
		{"zero rate", "[session]\nsample_rate = 0\n", "sample rates"},
		{"bad latency", "[session]\nplayback_latency = \"soon\"\n", "playback_latency"},
		{"rate as float", "[session]\nsample_rate = 4.8e4\n", "sample_rate"},
		{"file without path", "[sequencer]\nbackend = \"file\"\n", "state_path"},
		{"unknown sequencer", "[sequencer]\nbackend = \"alsa\"\n", "unknown sequencer"},
		{"syntax", "[devices\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeTemp(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadAccessories(t *testing.T) {
	path := writeTemp(t, `
mode = "in_call"
dual_mic = true
tty_mode = "hco"
`)

	a, err := LoadAccessories(path)
	if err != nil {
		t.Fatalf("LoadAccessories: %v", err)
	}
	want := Accessories{Mode: "in_call", DualMic: true, TTYMode: "hco"}
	if a != want {
		t.Errorf("got %+v, want %+v", a, want)
	}

	if _, err := LoadAccessories(writeTemp(t, `mode = "on_fire"`)); err == nil {
		t.Error("expected error for unknown mode")
	}
}

type fakeTarget struct {
	mode  device.Mode
	acc   routing.Accessories
	calls []string
	fail  error
}

func (f *fakeTarget) Mode() device.Mode                { return f.mode }
func (f *fakeTarget) Accessories() routing.Accessories { return f.acc }

func (f *fakeTarget) SetMode(m device.Mode) {
	f.calls = append(f.calls, "mode")
	f.mode = m
}

func (f *fakeTarget) SetDualMic(on bool) error {
	f.calls = append(f.calls, "dual_mic")
	f.acc.DualMic = on
	return f.fail
}

func (f *fakeTarget) SetANC(on bool) error {
	f.calls = append(f.calls, "anc")
	f.acc.ANC = on
	return f.fail
}

func (f *fakeTarget) SetTTYMode(tty device.TTYMode) error {
	f.calls = append(f.calls, "tty_mode")
	f.acc.TTY = tty
	return nil
}

func (f *fakeTarget) SetBluetoothVGS(on bool) error {
	f.calls = append(f.calls, "bt_vgs")
	f.acc.BluetoothVGS = on
	return nil
}

func TestAccessoriesApply(t *testing.T) {
	target := &fakeTarget{acc: routing.Accessories{ANC: true}}

	a := Accessories{Mode: "in_call", ANC: true, TTYMode: "full"}
	if err := a.Apply(target); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"mode", "tty_mode"}
	if strings.Join(target.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", target.calls, want)
	}
	if target.mode != device.ModeInCall || target.acc.TTY != device.TTYFull {
		t.Errorf("target = %+v", target)
	}

	target.calls = nil
	if err := a.Apply(target); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if len(target.calls) != 0 {
		t.Errorf("unchanged file should not call setters, got %v", target.calls)
	}
}

func TestAccessoriesApplyJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	target := &fakeTarget{fail: boom}

	err := Accessories{DualMic: true, ANC: true}.Apply(target)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(target.calls) != 2 {
		t.Errorf("both setters should run, got %v", target.calls)
	}
}
