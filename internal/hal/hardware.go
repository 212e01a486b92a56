// Package hal is the upward API of the audio router. Hardware owns the
// routing state and serializes every call behind one lock.
package hal

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/driver"
	"github.com/smazurov/audiohal/internal/events"
	"github.com/smazurov/audiohal/internal/halerr"
	"github.com/smazurov/audiohal/internal/routing"
	"github.com/smazurov/audiohal/internal/session"
	"github.com/smazurov/audiohal/internal/ucm"
)

// ErrNoInit is returned by InitCheck when no transport is configured.
var ErrNoInit = errors.New("audio transport not initialized")

// Options wires a Hardware.
type Options struct {
	Transport driver.Transport
	Sequencer ucm.Sequencer
	Layout    device.Layout
	Defaults  session.Defaults
	Bus       routing.Publisher
	Logger    *slog.Logger
}

// Hardware is safe for concurrent use.
type Hardware struct {
	mu        sync.Mutex
	state     routing.State
	micMuted  bool
	engine    *routing.Engine
	transport driver.Transport
	seq       *ucm.Adapter
	bus       routing.Publisher
	logger    *slog.Logger
}

// New creates a Hardware in NORMAL mode with every accessory off.
func New(opts Options) *Hardware {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seq := opts.Sequencer
	if seq == nil {
		seq = ucm.NewMemory()
	}
	defaults := opts.Defaults
	if defaults == (session.Defaults{}) {
		defaults = session.DefaultDefaults()
	}
	layout := opts.Layout
	if layout == (device.Layout{}) {
		layout = device.DefaultLayout()
	}
	var bus routing.Publisher = nopPublisher{}
	if opts.Bus != nil {
		bus = opts.Bus
	}

	adapter := ucm.NewAdapter(seq, logger)
	return &Hardware{
		state:     routing.State{Mode: device.ModeNormal},
		transport: opts.Transport,
		seq:       adapter,
		bus:       bus,
		logger:    logger,
		engine: routing.New(routing.Options{
			Layout:    layout,
			Factory:   session.NewFactory(defaults),
			Transport: opts.Transport,
			Sequencer: adapter,
			Bus:       bus,
			Logger:    logger,
		}),
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// InitCheck reports whether a transport is available.
func (h *Hardware) InitCheck() error {
	if h.transport == nil {
		return ErrNoInit
	}
	return nil
}

// Layout returns the device layout.
func (h *Hardware) Layout() device.Layout {
	return h.engine.Layout()
}

// TransportName names the active driver backend.
func (h *Hardware) TransportName() string {
	if h.transport == nil {
		return ""
	}
	return h.transport.Name()
}

// RouteDevices routes the sessions to mask. A zero mask is ignored.
func (h *Hardware) RouteDevices(mask device.Mask) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if mask == 0 {
		return nil
	}
	return h.engine.RouteDevices(&h.state, mask)
}

// SetMode changes the telephony mode. Routing follows on the next
// RouteDevices call.
func (h *Hardware) SetMode(mode device.Mode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if mode == h.state.Mode {
		return
	}
	prev := h.state.Mode
	h.state.Mode = mode
	h.logger.Info("Mode changed", "mode", mode.String(), "previous", prev.String())
	h.bus.Publish(events.ModeChangedEvent{
		Mode:      mode.String(),
		Previous:  prev.String(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Mode returns the telephony mode.
func (h *Hardware) Mode() device.Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Mode
}

// OpenOutput opens a playback session on a single device.
func (h *Hardware) OpenOutput(mask device.Mask, lowPower bool) (*session.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.OpenSession(&h.state, routing.OpenRequest{
		Category: session.Playback,
		Devices:  mask,
		LowPower: lowPower,
	})
}

// OpenInput opens a capture session on a single device. Zero rate or
// channels keep the defaults.
func (h *Hardware) OpenInput(mask device.Mask, sampleRate, channels int) (*session.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.OpenSession(&h.state, routing.OpenRequest{
		Category:   session.Capture,
		Devices:    mask,
		SampleRate: sampleRate,
		Channels:   channels,
	})
}

// CloseSession closes a session by id.
func (h *Hardware) CloseSession(id uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.CloseSession(&h.state, id)
}

// SetDualMic toggles the second microphone and re-routes.
func (h *Hardware) SetDualMic(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.DualMic = on
	h.accessoryChanged("dual_mic", strconv.FormatBool(on))
	return h.reroute()
}

// SetANC toggles ANC headset substitution and re-routes.
func (h *Hardware) SetANC(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.ANC = on
	h.accessoryChanged("anc", strconv.FormatBool(on))
	return h.reroute()
}

// SetTTYMode changes the TTY mode. It only takes effect on a route while a
// call is up.
func (h *Hardware) SetTTYMode(tty device.TTYMode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.TTY = tty
	h.accessoryChanged("tty_mode", tty.String())
	if h.state.Mode != device.ModeInCall {
		return nil
	}
	return h.reroute()
}

// SetBluetoothVGS records whether the Bluetooth headset controls call volume.
func (h *Hardware) SetBluetoothVGS(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.BluetoothVGS = on
	h.accessoryChanged("bt_vgs", strconv.FormatBool(on))
	if !h.state.VoiceCallActive {
		return nil
	}
	return h.reroute()
}

// Accessories returns the current accessory flags.
func (h *Hardware) Accessories() routing.Accessories {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Accessories
}

// reroute re-applies the current devices. Caller holds mu.
func (h *Hardware) reroute() error {
	if len(h.engine.Sessions()) == 0 {
		return nil
	}
	return h.engine.RouteDevices(&h.state, 0)
}

func (h *Hardware) accessoryChanged(name, value string) {
	h.logger.Info("Accessory changed", "name", name, "value", value)
	h.bus.Publish(events.AccessoryChangedEvent{
		Name:      name,
		Value:     value,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *Hardware) mixer() (driver.Mixer, bool) {
	m, ok := h.transport.(driver.Mixer)
	if !ok {
		h.logger.Debug("Transport has no mixer controls", "transport", h.TransportName())
	}
	return m, ok
}

// SetVoiceVolume sets the in-call volume, v in [0, 1]. The driver scale is
// inverted: 0 is loudest.
func (h *Hardware) SetVoiceVolume(v float64) error {
	if math.IsNaN(v) {
		return halerr.New(halerr.InvalidRequest, "voice volume is NaN")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if v < 0 {
		h.logger.Warn("Voice volume under 0.0, assuming 0.0", "volume", v)
		v = 0
	} else if v > 1 {
		h.logger.Warn("Voice volume over 1.0, assuming 1.0", "volume", v)
		v = 1
	}
	m, ok := h.mixer()
	if !ok {
		return nil
	}
	return m.SetVoiceVolume(VoiceLevel(v))
}

// SetFmVolume sets the radio volume from a linear gain in [0, 1]. Gains at
// or below zero mute.
func (h *Hardware) SetFmVolume(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return halerr.New(halerr.InvalidRequest, "FM volume must be a finite number").With("volume", v)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	level := min(max(LogToLinear(max(v, 0)), 0), 100)
	h.logger.Debug("Setting FM volume", "volume", v, "level", level)
	m, ok := h.mixer()
	if !ok {
		return nil
	}
	return m.SetFmVolume(level)
}

// SetMicMute mutes or unmutes the microphones.
func (h *Hardware) SetMicMute(muted bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.micMuted = muted
	m, ok := h.mixer()
	if !ok {
		return nil
	}
	return m.SetMicMute(muted)
}

// MicMute reports the last requested mute state.
func (h *Hardware) MicMute() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.micMuted
}

// SetBtscoRate sets the Bluetooth SCO sample rate.
func (h *Hardware) SetBtscoRate(rate int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.mixer()
	if !ok {
		return nil
	}
	return m.SetBtscoRate(rate)
}

// InputBufferSize returns the capture buffer size for the given parameters.
func (h *Hardware) InputBufferSize(sampleRate int, format session.Format, channels int) int {
	return h.engine.Factory().InputBufferSize(sampleRate, format, channels)
}

// Parameters are the values exposed through the parameter query.
type Parameters struct {
	DualMic bool `json:"dual_mic"`
	FMOn    bool `json:"fm_on"`
	VGS     bool `json:"vgs"`
}

// Parameters returns the queryable flags.
func (h *Hardware) Parameters() Parameters {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Parameters{
		DualMic: h.state.DualMic,
		FMOn:    h.state.FMActive,
		VGS:     h.state.BluetoothVGS,
	}
}

// Snapshot is a consistent copy of the router state.
type Snapshot struct {
	State     routing.State
	Sessions  []session.Session
	Verb      string
	Modifiers []string
	Transport string
}

// Snapshot copies the state and open sessions. A failing use case registry
// leaves Verb empty.
func (h *Hardware) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	open := h.engine.Sessions()
	snap := Snapshot{
		State:     h.state,
		Sessions:  make([]session.Session, len(open)),
		Transport: h.TransportName(),
	}
	for i, s := range open {
		snap.Sessions[i] = *s
	}
	verb, mods, err := h.engine.UseCases()
	if err != nil {
		h.logger.Warn("Failed to read use case state", "error", err)
	}
	snap.Verb, snap.Modifiers = verb, mods
	return snap
}

// Close tears down every session and releases the use case registry.
func (h *Hardware) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return errors.Join(h.engine.Shutdown(&h.state), h.seq.Close())
}

// VoiceLevel maps a voice volume in [0, 1] to the driver's inverted 0..100
// scale.
func VoiceLevel(v float64) int {
	return 100 - int(math.RoundToEven(v*100))
}

// dB step of the volume curve, 0.5 dB per index.
const dbConvertInverse = 1 / (-0.5 * math.Ln10 / 20)

// LogToLinear maps a linear gain to the 0..100 volume index of the platform
// audio curve. Zero stays zero.
func LogToLinear(v float64) int {
	if v == 0 {
		return 0
	}
	return 100 - int(dbConvertInverse*math.Log(v)+0.5)
}
