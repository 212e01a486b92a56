//go:build !linux

package driver

import (
	"errors"
	"log/slog"

	"github.com/smazurov/audiohal/internal/device"
)

func cardPresent(int) bool { return false }

func newALSA(Config, device.Layout, *slog.Logger) (Transport, error) {
	return nil, errors.New("alsa backend is only available on linux")
}

// ListPCMs is not supported off linux.
func ListPCMs() ([]PCM, error) {
	return nil, errors.New("pcm enumeration is only available on linux")
}
