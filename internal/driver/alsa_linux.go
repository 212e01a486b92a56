//go:build linux

package driver

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/halerr"
	"github.com/smazurov/audiohal/internal/session"
	"github.com/smazurov/audiohal/pkg/linuxav/alsa"
)

func cardPresent(card int) bool {
	return alsa.CardExists(card)
}

type endpoint struct {
	card, device int
}

// alsaTransport drives PCM nodes directly and programs routes through mixer
// controls.
type alsaTransport struct {
	cfg       Config
	layout    device.Layout
	logger    *slog.Logger
	mixer     controlWriter
	endpoints map[device.Mask]endpoint
	voice     *endpoint
	fm        *endpoint
}

func newALSA(cfg Config, layout device.Layout, logger *slog.Logger) (Transport, error) {
	return newALSAWithMixer(cfg, layout, logger, newAmixer())
}

func newALSAWithMixer(cfg Config, layout device.Layout, logger *slog.Logger, mixer controlWriter) (*alsaTransport, error) {
	t := &alsaTransport{
		cfg:       cfg,
		layout:    layout,
		logger:    logger,
		mixer:     mixer,
		endpoints: make(map[device.Mask]endpoint),
	}

	for name, hw := range cfg.Endpoints {
		bit, err := layout.Parse([]string{name})
		if err != nil {
			return nil, fmt.Errorf("driver endpoint: %w", err)
		}
		card, dev, err := alsa.ParseALSADevice(hw)
		if err != nil {
			return nil, fmt.Errorf("driver endpoint %q: %w", name, err)
		}
		t.endpoints[bit] = endpoint{card: card, device: dev}
	}

	var err error
	if t.voice, err = parseOptionalPCM(cfg.VoicePCM); err != nil {
		return nil, fmt.Errorf("voice_pcm: %w", err)
	}
	if t.fm, err = parseOptionalPCM(cfg.FMPCM); err != nil {
		return nil, fmt.Errorf("fm_pcm: %w", err)
	}
	for name, settings := range cfg.Routes {
		if _, err := layout.Parse([]string{name}); err != nil {
			return nil, fmt.Errorf("driver route: %w", err)
		}
		for _, s := range settings {
			if _, _, err := parseControl(s); err != nil {
				return nil, fmt.Errorf("driver route %q: %w", name, err)
			}
		}
	}

	logger.Info("ALSA transport ready", "card", cfg.Card, "endpoints", len(t.endpoints))
	return t, nil
}

func parseOptionalPCM(hw string) (*endpoint, error) {
	if hw == "" {
		return nil, nil
	}
	card, dev, err := alsa.ParseALSADevice(hw)
	if err != nil {
		return nil, err
	}
	return &endpoint{card: card, device: dev}, nil
}

func (t *alsaTransport) Name() string { return "alsa" }

// resolve picks the PCM for the first device in mask that has one.
func (t *alsaTransport) resolve(mask device.Mask) (endpoint, bool) {
	for bit := device.Mask(1); bit != 0; bit <<= 1 {
		if !mask.Has(bit) {
			continue
		}
		if ep, ok := t.endpoints[bit]; ok {
			return ep, true
		}
	}
	return endpoint{}, false
}

func streamOf(s *session.Session) int {
	if s.Category == session.Capture {
		return alsa.StreamCapture
	}
	return alsa.StreamPlayback
}

func (t *alsaTransport) openPCM(ep endpoint, stream int, s *session.Session) (*alsa.PCM, error) {
	pcm, err := alsa.Open(ep.card, ep.device, stream, alsa.Config{
		Format:      int(s.Format),
		Channels:    s.Channels,
		Rate:        s.SampleRate,
		BufferBytes: s.BufferSize,
	})
	if err != nil {
		return nil, halerr.Wrap(halerr.DeviceUnavailable, "pcm open failed", err).
			With("pcm", alsa.FormatALSADevice(ep.card, ep.device))
	}
	return pcm, nil
}

func (t *alsaTransport) Open(s *session.Session) error {
	ep, ok := t.resolve(s.Devices)
	if !ok {
		return halerr.New(halerr.DeviceUnavailable, "no PCM endpoint configured").
			With("devices", t.layout.String(s.Devices))
	}
	pcm, err := t.openPCM(ep, streamOf(s), s)
	if err != nil {
		return err
	}
	s.Handle = pcm
	t.logger.Debug("PCM opened", "session_id", s.ID, "pcm", pcm.Path)
	return nil
}

func (t *alsaTransport) Close(s *session.Session) error {
	var firstErr error
	for _, h := range []any{s.Handle, s.CaptureHandle} {
		if pcm, ok := h.(*alsa.PCM); ok {
			if err := pcm.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	s.Handle, s.CaptureHandle = nil, nil
	return firstErr
}

func (t *alsaTransport) Route(s *session.Session, devices device.Mask, mode device.Mode, tty device.TTYMode) error {
	for _, name := range t.layout.Names(devices) {
		for _, setting := range t.cfg.Routes[name] {
			ctl, value, _ := parseControl(setting)
			if err := t.mixer.Set(t.cfg.Card, ctl, value); err != nil {
				return halerr.Wrap(halerr.DeviceUnavailable, "route control failed", err).With("device", name)
			}
		}
	}
	if t.cfg.Controls.TTYMode != "" && mode == device.ModeInCall {
		if err := t.mixer.Set(t.cfg.Card, t.cfg.Controls.TTYMode, tty.String()); err != nil {
			return halerr.Wrap(halerr.DeviceUnavailable, "tty control failed", err)
		}
	}

	// A stream already running follows the route onto its new PCM.
	pcm, ok := s.Handle.(*alsa.PCM)
	if !ok {
		return nil
	}
	ep, found := t.resolve(devices)
	if !found || (ep.card == pcm.Card && ep.device == pcm.Device) {
		return nil
	}
	next, err := t.openPCM(ep, pcm.Stream, s)
	if err != nil {
		return err
	}
	_ = pcm.Close()
	s.Handle = next
	t.logger.Debug("PCM moved", "session_id", s.ID, "from", pcm.Path, "to", next.Path)
	return nil
}

// startHostless opens and starts both directions of a codec internal link.
func (t *alsaTransport) startHostless(s *session.Session, ep *endpoint, duplex bool) error {
	if ep == nil {
		return halerr.New(halerr.DeviceUnavailable, "hostless PCM not configured").With("use_case", s.UseCase.String())
	}
	rx, err := t.openPCM(*ep, alsa.StreamPlayback, s)
	if err != nil {
		return err
	}
	if err := rx.Start(); err != nil {
		_ = rx.Close()
		return halerr.Wrap(halerr.DeviceUnavailable, "hostless start failed", err)
	}
	s.Handle = rx

	if !duplex {
		return nil
	}
	tx, err := t.openPCM(*ep, alsa.StreamCapture, s)
	if err != nil {
		_ = t.Close(s)
		return err
	}
	if err := tx.Start(); err != nil {
		_ = tx.Close()
		_ = t.Close(s)
		return halerr.Wrap(halerr.DeviceUnavailable, "hostless start failed", err)
	}
	s.CaptureHandle = tx
	return nil
}

func (t *alsaTransport) StartVoiceCall(s *session.Session) error {
	return t.startHostless(s, t.voice, true)
}

func (t *alsaTransport) StartFm(s *session.Session) error {
	return t.startHostless(s, t.fm, false)
}

func (t *alsaTransport) setControl(control, value string) error {
	if control == "" {
		t.logger.Debug("Mixer control not configured, skipping", "value", value)
		return nil
	}
	if err := t.mixer.Set(t.cfg.Card, control, value); err != nil {
		return halerr.Wrap(halerr.DeviceUnavailable, "mixer control failed", err).With("control", control)
	}
	return nil
}

func (t *alsaTransport) SetVoiceVolume(level int) error {
	return t.setControl(t.cfg.Controls.VoiceVolume, strconv.Itoa(level))
}

func (t *alsaTransport) SetFmVolume(level int) error {
	return t.setControl(t.cfg.Controls.FMVolume, strconv.Itoa(level))
}

func (t *alsaTransport) SetMicMute(muted bool) error {
	value := "0"
	if muted {
		value = "1"
	}
	return t.setControl(t.cfg.Controls.MicMute, value)
}

func (t *alsaTransport) SetBtscoRate(rate int) error {
	return t.setControl(t.cfg.Controls.BTSCORate, strconv.Itoa(rate))
}

// ListPCMs enumerates every playback and capture PCM on the system.
func ListPCMs() ([]PCM, error) {
	devs, err := alsa.ListDevices()
	if err != nil {
		return nil, err
	}
	pcms := make([]PCM, len(devs))
	for i, d := range devs {
		pcms[i] = PCM{
			Name:        d.ALSADevice,
			Card:        d.CardNumber,
			CardID:      d.CardID,
			CardName:    d.CardName,
			Device:      d.DeviceNumber,
			DeviceName:  d.DeviceName,
			Stream:      d.Type,
			Rates:       d.SupportedRates,
			MinChannels: d.MinChannels,
			MaxChannels: d.MaxChannels,
			Formats:     d.SupportedFormats,
		}
	}
	return pcms, nil
}
