// Package session tracks the audio paths that are currently open.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/ucm"
)

// Category is the exclusive slot a session occupies. At most one session per
// category exists at any time.
type Category int

const (
	Voice Category = iota
	FM
	Playback
	Capture
)

func (c Category) String() string {
	switch c {
	case Voice:
		return "voice"
	case FM:
		return "fm"
	case Playback:
		return "playback"
	case Capture:
		return "capture"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory accepts the names produced by Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "voice":
		return Voice, nil
	case "fm":
		return FM, nil
	case "playback":
		return Playback, nil
	case "capture":
		return Capture, nil
	default:
		return 0, fmt.Errorf("unknown session category %q", s)
	}
}

// Format is a PCM sample format.
type Format int

// FormatS16LE is the only format the router opens. Values match the ALSA
// SNDRV_PCM_FORMAT numbering.
const FormatS16LE Format = 2

func (f Format) String() string {
	if f == FormatS16LE {
		return "S16_LE"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Session describes one active audio path.
type Session struct {
	ID         uint64
	Category   Category
	Kind       ucm.Kind
	UseCase    ucm.UseCase
	Devices    device.Mask
	Format     Format
	Channels   int
	SampleRate int
	BufferSize int
	Latency    time.Duration
	OpenedAt   time.Time

	// Handle and CaptureHandle belong to the driver transport.
	Handle        any
	CaptureHandle any
}

// RoundDownPow2 returns the largest power of two not above n. Zero stays zero.
func RoundDownPow2(n int) int {
	if n <= 0 {
		return 0
	}
	p := 1
	for p <= n/2 {
		p <<= 1
	}
	return p
}
