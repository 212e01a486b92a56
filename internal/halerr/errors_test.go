package halerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	base := errors.New("ioctl: no such device")
	err := fmt.Errorf("open session: %w", Wrap(DeviceUnavailable, "pcm open failed", base))

	if !HasCode(err, DeviceUnavailable) {
		t.Error("expected DeviceUnavailable through wrapping")
	}
	if HasCode(err, InvalidRequest) {
		t.Error("unexpected InvalidRequest")
	}
	if !errors.Is(err, base) {
		t.Error("cause should be reachable with errors.Is")
	}
	if HasCode(base, DeviceUnavailable) {
		t.Error("plain error must not match")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"no cause", New(InvalidRequest, "multiple devices"), "[INVALID_REQUEST] multiple devices"},
		{"with cause", Wrap(SequencerUnavailable, "set verb", errors.New("busy")), "[SEQUENCER_UNAVAILABLE] set verb: busy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOfAndContext(t *testing.T) {
	err := New(InvalidRequest, "bad mask").With("devices", "speaker+earpiece")
	if CodeOf(err) != InvalidRequest {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if err.Context["devices"] != "speaker+earpiece" {
		t.Errorf("context = %v", err.Context)
	}
	if CodeOf(errors.New("x")) != "" {
		t.Error("CodeOf plain error should be empty")
	}
}
