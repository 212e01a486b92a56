package driver

import (
	"log/slog"
	"sync"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/session"
)

// Null is a Transport that records what it was asked to do and touches no
// hardware. It backs the simulator and systems without a sound card.
type Null struct {
	logger *slog.Logger

	mu          sync.Mutex
	open        map[uint64]bool
	lastRoute   device.Mask
	voice       bool
	fm          bool
	voiceVolume int
	fmVolume    int
	micMuted    bool
	btscoRate   int
}

// NewNull returns an idle Null transport.
func NewNull(logger *slog.Logger) *Null {
	return &Null{logger: logger, open: make(map[uint64]bool)}
}

func (n *Null) Name() string { return "null" }

func (n *Null) Open(s *session.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.open[s.ID] = true
	n.logger.Debug("Open (no-op)", "session_id", s.ID, "use_case", s.UseCase.String())
	return nil
}

func (n *Null) Close(s *session.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.open, s.ID)
	switch s.Category {
	case session.Voice:
		n.voice = false
	case session.FM:
		n.fm = false
	}
	n.logger.Debug("Close (no-op)", "session_id", s.ID)
	return nil
}

func (n *Null) Route(s *session.Session, devices device.Mask, mode device.Mode, tty device.TTYMode) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastRoute = devices
	n.logger.Debug("Route (no-op)",
		"session_id", s.ID,
		"devices", uint32(devices),
		"mode", mode.String(),
		"tty", tty.String())
	return nil
}

func (n *Null) StartVoiceCall(s *session.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.voice = true
	n.open[s.ID] = true
	return nil
}

func (n *Null) StartFm(s *session.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fm = true
	n.open[s.ID] = true
	return nil
}

func (n *Null) SetVoiceVolume(level int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.voiceVolume = level
	return nil
}

func (n *Null) SetFmVolume(level int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fmVolume = level
	return nil
}

func (n *Null) SetMicMute(muted bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.micMuted = muted
	return nil
}

func (n *Null) SetBtscoRate(rate int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.btscoRate = rate
	return nil
}

// NullState is a snapshot of what the Null transport has been told.
type NullState struct {
	OpenSessions int
	LastRoute    device.Mask
	VoiceCall    bool
	FM           bool
	VoiceVolume  int
	FMVolume     int
	MicMuted     bool
	BTSCORate    int
}

// State returns the recorded state.
func (n *Null) State() NullState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return NullState{
		OpenSessions: len(n.open),
		LastRoute:    n.lastRoute,
		VoiceCall:    n.voice,
		FM:           n.fm,
		VoiceVolume:  n.voiceVolume,
		FMVolume:     n.fmVolume,
		MicMuted:     n.micMuted,
		BTSCORate:    n.btscoRate,
	}
}
