//go:build linux

package hotplug

import (
	"context"
	"errors"
	"testing"
)

func TestParseUEvent(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  CardEvent
		ok    bool
	}{
		{name: "empty input", input: []byte{}},
		{name: "nil input"},
		{name: "no @ separator", input: []byte("invalid")},
		{name: "missing action", input: []byte("@/devices/foo/sound/card0\x00SUBSYSTEM=sound\x00")},
		{
			name:  "card added",
			input: []byte("add@/devices/platform/sound/sound/card1\x00ACTION=add\x00SUBSYSTEM=sound\x00"),
			want:  CardEvent{Action: ActionAdd, Card: 1, KObj: "/devices/platform/sound/sound/card1"},
			ok:    true,
		},
		{
			name:  "card initialized",
			input: []byte("change@/devices/platform/sound/sound/card0\x00SUBSYSTEM=sound\x00SOUND_INITIALIZED=1\x00"),
			want:  CardEvent{Action: ActionChange, Card: 0, KObj: "/devices/platform/sound/sound/card0"},
			ok:    true,
		},
		{
			name:  "playback pcm removed",
			input: []byte("remove@/devices/usb/1-1/sound/card2/pcmC2D0p\x00SUBSYSTEM=sound\x00DEVNAME=snd/pcmC2D0p\x00"),
			want:  CardEvent{Action: ActionRemove, Card: 2, Node: "pcmC2D0p", KObj: "/devices/usb/1-1/sound/card2/pcmC2D0p"},
			ok:    true,
		},
		{
			name:  "capture pcm added",
			input: []byte("add@/devices/x/sound/card0/pcmC0D12c\x00SUBSYSTEM=sound\x00DEVNAME=snd/pcmC0D12c\x00"),
			want:  CardEvent{Action: ActionAdd, Card: 0, Node: "pcmC0D12c", KObj: "/devices/x/sound/card0/pcmC0D12c"},
			ok:    true,
		},
		{
			name:  "control node ignored",
			input: []byte("add@/devices/x/sound/card0/controlC0\x00SUBSYSTEM=sound\x00DEVNAME=snd/controlC0\x00"),
		},
		{
			name:  "timer ignored",
			input: []byte("add@/devices/virtual/sound/timer\x00SUBSYSTEM=sound\x00DEVNAME=snd/timer\x00"),
		},
		{
			name:  "other subsystem ignored",
			input: []byte("add@/devices/usb/1-1\x00SUBSYSTEM=usb\x00DEVTYPE=usb_device\x00"),
		},
		{
			name:  "bind action ignored",
			input: []byte("bind@/devices/x/sound/card0\x00SUBSYSTEM=sound\x00"),
		},
		{
			name:  "malformed pcm name",
			input: []byte("add@/devices/x/sound/card0/pcmC0Dxp\x00SUBSYSTEM=sound\x00DEVNAME=snd/pcmC0Dxp\x00"),
		},
		{
			name: "libudev header",
			input: append([]byte("libudev\x00\xfe\xed\xca\xfe\x00"),
				[]byte("add@/devices/x/sound/card3\x00SUBSYSTEM=sound\x00")...),
			want: CardEvent{Action: ActionAdd, Card: 3, KObj: "/devices/x/sound/card3"},
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseUEvent(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (event %+v)", ok, tt.ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCardEventIsCard(t *testing.T) {
	if !(CardEvent{Card: 1}).IsCard() {
		t.Error("card level event should report IsCard")
	}
	if (CardEvent{Card: 1, Node: "pcmC1D0p"}).IsCard() {
		t.Error("pcm event should not report IsCard")
	}
}

func TestNewMonitor(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}
	defer func() { _ = m.Close() }()

	if m.fd <= 0 {
		t.Errorf("expected valid fd, got %d", m.fd)
	}
}

func TestMonitorRunCancellation(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}
	defer func() { _ = m.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan CardEvent, 1)
	if runErr := m.Run(ctx, out); !errors.Is(runErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", runErr)
	}
	if _, open := <-out; open {
		t.Error("Run must close the channel")
	}
}
