package session

import (
	"sync/atomic"
	"time"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/ucm"
)

// Defaults are the platform parameters new sessions start from.
type Defaults struct {
	BufferSize      int `toml:"buffer_size"`
	FMBufferSize    int `toml:"fm_buffer_size"`
	InBufferSize    int `toml:"in_buffer_size"`
	SampleRate      int `toml:"sample_rate"`
	Channels        int `toml:"channels"`
	VoiceSampleRate int `toml:"voice_sample_rate"`
	VoiceChannels   int `toml:"voice_channels"`
	RecordRate      int `toml:"record_sample_rate"`

	PlaybackLatency time.Duration `toml:"playback_latency"`
	VoiceLatency    time.Duration `toml:"voice_latency"`
	RecordLatency   time.Duration `toml:"record_latency"`
}

// DefaultDefaults returns the parameters used when none are configured.
func DefaultDefaults() Defaults {
	return Defaults{
		BufferSize:      4096,
		FMBufferSize:    2048,
		InBufferSize:    320,
		SampleRate:      44100,
		Channels:        2,
		VoiceSampleRate: 8000,
		VoiceChannels:   1,
		RecordRate:      8000,
		PlaybackLatency: 96 * time.Millisecond,
		VoiceLatency:    85 * time.Millisecond,
		RecordLatency:   96 * time.Millisecond,
	}
}

// Factory builds session records. It never touches the transport.
type Factory struct {
	defaults Defaults
	nextID   atomic.Uint64
	now      func() time.Time
}

// NewFactory returns a factory using d.
func NewFactory(d Defaults) *Factory {
	return &Factory{defaults: d, now: time.Now}
}

// Defaults returns the configured parameters.
func (f *Factory) Defaults() Defaults {
	return f.defaults
}

// CategoryOf returns the registry slot for kind.
func CategoryOf(kind ucm.Kind) Category {
	switch kind {
	case ucm.KindVoice:
		return Voice
	case ucm.KindFM:
		return FM
	case ucm.KindRecord, ucm.KindVoiceRecord, ucm.KindFMRecord:
		return Capture
	default:
		return Playback
	}
}

// Create returns a session for kind on devices. verbActive is the result of
// the registry verb query and decides between a verb and a modifier use case. The
// bool is false when kind cannot start in that state.
func (f *Factory) Create(kind ucm.Kind, devices device.Mask, verbActive bool) (*Session, bool) {
	u, ok := ucm.Select(kind, verbActive)
	if !ok {
		return nil, false
	}
	d := f.defaults
	s := &Session{
		ID:       f.nextID.Add(1),
		Category: CategoryOf(kind),
		Kind:     kind,
		UseCase:  u,
		Devices:  devices,
		Format:   FormatS16LE,
		OpenedAt: f.now(),
	}

	switch kind {
	case ucm.KindVoice:
		s.Channels = d.VoiceChannels
		s.SampleRate = d.VoiceSampleRate
		s.Latency = d.VoiceLatency
		s.BufferSize = RoundDownPow2(d.BufferSize)
	case ucm.KindFM:
		s.Channels = d.Channels
		s.SampleRate = d.SampleRate
		s.Latency = d.VoiceLatency
		s.BufferSize = RoundDownPow2(d.FMBufferSize)
	case ucm.KindLowPower:
		s.Channels = d.Channels
		s.SampleRate = d.SampleRate
		s.Latency = d.VoiceLatency
		s.BufferSize = RoundDownPow2(d.BufferSize)
	case ucm.KindRecord, ucm.KindVoiceRecord, ucm.KindFMRecord:
		s.Channels = d.VoiceChannels
		s.SampleRate = d.RecordRate
		s.Latency = d.RecordLatency
		s.BufferSize = RoundDownPow2(d.InBufferSize)
	default:
		s.Channels = d.Channels
		s.SampleRate = d.SampleRate
		s.Latency = d.PlaybackLatency
		s.BufferSize = RoundDownPow2(d.BufferSize)
	}
	return s, true
}

// InputBufferSize reports the capture buffer a client should allocate. Only
// 16 bit PCM is supported; anything else yields 0.
func (f *Factory) InputBufferSize(sampleRate int, format Format, channels int) int {
	if format != FormatS16LE {
		return 0
	}
	if sampleRate < 44100 {
		return f.defaults.InBufferSize * channels
	}
	return f.defaults.InBufferSize * 8
}
