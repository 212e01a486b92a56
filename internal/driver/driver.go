// Package driver talks to the audio hardware on behalf of the router.
package driver

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/session"
)

// Transport opens, routes and closes the physical path behind a session.
// Every call is synchronous and may block on kernel I/O.
type Transport interface {
	// Name identifies the backend in logs and the API.
	Name() string
	Open(s *session.Session) error
	Close(s *session.Session) error
	Route(s *session.Session, devices device.Mask, mode device.Mode, tty device.TTYMode) error
	StartVoiceCall(s *session.Session) error
	StartFm(s *session.Session) error
}

// Mixer is implemented by transports that expose gain and mute controls.
type Mixer interface {
	SetVoiceVolume(level int) error
	SetFmVolume(level int) error
	SetMicMute(muted bool) error
	SetBtscoRate(rate int) error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is "auto", "alsa" or "null".
	Backend string `toml:"backend"`
	Card    int    `toml:"card"`

	// Endpoints maps a device name to the PCM serving it, e.g. speaker = "hw:0,0".
	Endpoints map[string]string `toml:"endpoints"`
	// VoicePCM and FMPCM are hostless links started for calls and radio.
	VoicePCM string `toml:"voice_pcm"`
	FMPCM    string `toml:"fm_pcm"`

	// Routes lists the mixer settings ("Control Name=value") applied when a
	// device becomes part of a route.
	Routes map[string][]string `toml:"routes"`

	Controls Controls `toml:"controls"`
}

// Controls names the mixer elements used by the Mixer operations.
type Controls struct {
	VoiceVolume string `toml:"voice_volume"`
	FMVolume    string `toml:"fm_volume"`
	MicMute     string `toml:"mic_mute"`
	BTSCORate   string `toml:"btsco_rate"`
	TTYMode     string `toml:"tty_mode"`
}

// DefaultConfig picks a backend automatically.
func DefaultConfig() Config {
	return Config{
		Backend:   "auto",
		Endpoints: map[string]string{},
		Routes:    map[string][]string{},
	}
}

// New builds the transport named by cfg.Backend. "auto" uses ALSA when the
// configured card is present and falls back to the null backend otherwise.
func New(cfg Config, layout device.Layout, logger *slog.Logger) (Transport, error) {
	backend := strings.ToLower(cfg.Backend)
	switch backend {
	case "null":
		logger.Info("Using null audio transport")
		return NewNull(logger), nil

	case "alsa":
		return newALSA(cfg, layout, logger)

	case "", "auto":
		if cardPresent(cfg.Card) {
			logger.Info("Detected ALSA card, using ALSA transport", "card", cfg.Card)
			return newALSA(cfg, layout, logger)
		}
		logger.Info("No ALSA card detected, using null transport", "card", cfg.Card)
		return NewNull(logger), nil

	default:
		return nil, fmt.Errorf("unknown driver backend %q", cfg.Backend)
	}
}

// parseControl splits "Name=value".
func parseControl(setting string) (name, value string, err error) {
	name, value, ok := strings.Cut(setting, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("mixer setting %q: expected name=value", setting)
	}
	return name, strings.TrimSpace(value), nil
}
