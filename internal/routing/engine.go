package routing

import (
	"errors"
	"log/slog"
	"time"

	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/driver"
	"github.com/smazurov/audiohal/internal/events"
	"github.com/smazurov/audiohal/internal/halerr"
	"github.com/smazurov/audiohal/internal/session"
	"github.com/smazurov/audiohal/internal/ucm"
)

// Publisher receives engine events.
type Publisher interface {
	Publish(ev events.Event)
}

type discard struct{}

func (discard) Publish(events.Event) {}

// OpenRequest asks for a playback or capture session on one device.
type OpenRequest struct {
	Category session.Category
	Devices  device.Mask
	LowPower bool
	// SampleRate and Channels override the defaults when non-zero.
	SampleRate int
	Channels   int
}

// Options wires an Engine.
type Options struct {
	Layout    device.Layout
	Registry  *session.Registry
	Factory   *session.Factory
	Transport driver.Transport
	Sequencer *ucm.Adapter
	Bus       Publisher
	Logger    *slog.Logger
}

// Engine runs the routing state machine. It does no locking.
type Engine struct {
	layout    device.Layout
	registry  *session.Registry
	factory   *session.Factory
	transport driver.Transport
	seq       *ucm.Adapter
	bus       Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Engine.
func New(opts Options) *Engine {
	registry := opts.Registry
	if registry == nil {
		registry = session.NewRegistry()
	}
	factory := opts.Factory
	if factory == nil {
		factory = session.NewFactory(session.DefaultDefaults())
	}
	var bus Publisher = discard{}
	if opts.Bus != nil {
		bus = opts.Bus
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		layout:    opts.Layout,
		registry:  registry,
		factory:   factory,
		transport: opts.Transport,
		seq:       opts.Sequencer,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Layout returns the device layout in use.
func (e *Engine) Layout() device.Layout { return e.layout }

// Sessions returns the open sessions in insertion order.
func (e *Engine) Sessions() []*session.Session { return e.registry.All() }

// Factory returns the session factory.
func (e *Engine) Factory() *session.Factory { return e.factory }

// UseCases returns the registry's verb and modifiers.
func (e *Engine) UseCases() (string, []string, error) { return e.seq.State() }

// RouteDevices applies a routing request. An empty mask re-routes whatever is
// currently playing.
func (e *Engine) RouteDevices(st *State, requested device.Mask) error {
	if e.layout.IsCaptureOnly(requested) {
		e.logger.Debug("Ignoring routing for FM/in-call recording", "devices", e.layout.String(requested))
		return nil
	}

	var last device.Mask
	if s, ok := e.registry.MostRecent(); ok {
		last = s.Devices
	}

	mask, ok := e.layout.SubstituteANCHeadset(requested, st.ANC, last)
	if !ok {
		e.logger.Debug("No headset connected, ignoring ANC setting")
		return nil
	}
	if requested == 0 {
		// Re-route of the current device: keep what is playing, FM included.
		if mask == 0 {
			mask = last
		}
		if st.FMActive {
			mask |= e.layout.OutFM
		}
	}
	mask = e.layout.ApplyInCallSymmetry(mask, st.Mode)
	mask = e.layout.ApplyDualMic(mask, st.DualMic)

	e.logger.Debug("Routing",
		"devices", e.layout.String(mask),
		"mode", st.Mode.String(),
		"voice_call", st.VoiceCallActive,
		"fm", st.FMActive)

	switch {
	case st.Mode == device.ModeInCall && !st.VoiceCallActive:
		return e.startVoiceCall(st, mask)
	case st.Mode == device.ModeNormal && st.VoiceCallActive:
		return e.endVoiceCall(st, mask)
	case mask.Has(e.layout.OutFM) && !st.FMActive:
		return e.startFM(st, mask)
	case !mask.Has(e.layout.OutFM) && st.FMActive:
		return e.stopFM(st, mask)
	default:
		return e.routeMostRecent(st, mask)
	}
}

func (e *Engine) startVoiceCall(st *State, mask device.Mask) error {
	s, err := e.startHostless(st, ucm.KindVoice, mask, e.transport.StartVoiceCall)
	if err != nil {
		return err
	}
	st.VoiceCallActive = true
	e.logger.Info("Voice call started", "session_id", s.ID, "use_case", s.UseCase.String(), "devices", e.layout.String(mask))
	e.bus.Publish(events.CallStateChangedEvent{Active: true, Timestamp: e.timestamp()})
	return nil
}

func (e *Engine) endVoiceCall(st *State, mask device.Mask) error {
	closeErr := e.teardown(session.Voice, "call_ended")
	st.VoiceCallActive = false
	e.logger.Info("Voice call ended")
	e.bus.Publish(events.CallStateChangedEvent{Active: false, Timestamp: e.timestamp()})
	return errors.Join(closeErr, e.routeMostRecent(st, mask))
}

func (e *Engine) startFM(st *State, mask device.Mask) error {
	s, err := e.startHostless(st, ucm.KindFM, mask, e.transport.StartFm)
	if err != nil {
		return err
	}
	st.FMActive = true
	e.logger.Info("FM started", "session_id", s.ID, "use_case", s.UseCase.String(), "devices", e.layout.String(mask))
	e.bus.Publish(events.FMStateChangedEvent{Active: true, Timestamp: e.timestamp()})
	return nil
}

func (e *Engine) stopFM(st *State, mask device.Mask) error {
	closeErr := e.teardown(session.FM, "fm_stopped")
	st.FMActive = false
	e.logger.Info("FM stopped")
	e.bus.Publish(events.FMStateChangedEvent{Active: false, Timestamp: e.timestamp()})
	return errors.Join(closeErr, e.routeMostRecent(st, mask))
}

// startHostless brings up a voice or FM session: route, enable the use case,
// then start the link. Nothing is registered unless all transport steps
// succeed, and a session already holding the category stays up until then.
func (e *Engine) startHostless(st *State, kind ucm.Kind, mask device.Mask, start func(*session.Session) error) (*session.Session, error) {
	s, ok := e.factory.Create(kind, mask, e.verbActive())
	if !ok {
		return nil, halerr.New(halerr.InvalidRequest, "no use case for "+kind.String())
	}

	if err := e.route(st, s, mask); err != nil {
		return nil, err
	}
	e.activate(s.UseCase)
	if err := start(s); err != nil {
		e.rollback(s)
		failed := e.transportFailed("start_"+kind.String(), s, err, "failed to start "+kind.String())
		if closeErr := e.transport.Close(s); closeErr != nil {
			e.logger.Warn("Failed to release unstarted session", "session_id", s.ID, "error", closeErr)
		}
		return nil, failed
	}
	e.register(s)
	return s, nil
}

func (e *Engine) routeMostRecent(st *State, mask device.Mask) error {
	s, ok := e.registry.MostRecent()
	if !ok {
		e.logger.Debug("No active session to route")
		return nil
	}
	return e.route(st, s, mask)
}

func (e *Engine) route(st *State, s *session.Session, mask device.Mask) error {
	if err := e.transport.Route(s, mask, st.Mode, st.TTY); err != nil {
		return e.transportFailed("route", s, err, "route failed")
	}
	s.Devices = mask
	names := e.layout.Names(mask)
	e.bus.Publish(events.RouteAppliedEvent{
		SessionID: s.ID,
		Category:  s.Category.String(),
		UseCase:   s.UseCase.String(),
		Devices:   uint32(mask),
		Names:     names,
		Mode:      st.Mode.String(),
		TTY:       st.TTY.String(),
		Timestamp: e.timestamp(),
	})
	return nil
}

// OpenSession creates a playback or capture session.
func (e *Engine) OpenSession(st *State, req OpenRequest) (*session.Session, error) {
	if !req.Devices.IsSingle() {
		return nil, halerr.New(halerr.InvalidRequest, "open requires exactly one device").
			With("devices", e.layout.String(req.Devices))
	}

	var kind ucm.Kind
	var voiceRecord bool
	switch req.Category {
	case session.Playback:
		kind = ucm.KindMusic
		if req.LowPower {
			kind = ucm.KindLowPower
		}
	case session.Capture:
		switch {
		case req.Devices == e.layout.InVoiceCall && st.Mode == device.ModeInCall:
			if !st.VoiceCallActive {
				return nil, halerr.New(halerr.InvalidRequest, "in-call recording without voice call")
			}
			voiceRecord = true
			kind = ucm.KindVoiceRecord
		case e.layout.IsFMCapture(req.Devices):
			kind = ucm.KindFMRecord
		default:
			kind = ucm.KindRecord
		}
	default:
		return nil, halerr.New(halerr.InvalidRequest, "voice and FM sessions are started by routing").
			With("category", req.Category.String())
	}

	// A session already in the category keeps running until the new one is open.
	s, ok := e.factory.Create(kind, req.Devices, e.verbActive())
	if !ok {
		if voiceRecord {
			return nil, halerr.New(halerr.InvalidRequest, "in-call recording needs an active use case verb").
				With("voice_call", st.VoiceCallActive)
		}
		return nil, halerr.New(halerr.InvalidRequest, "no use case for "+kind.String())
	}
	if req.SampleRate > 0 {
		s.SampleRate = req.SampleRate
	}
	if req.Channels > 0 {
		s.Channels = req.Channels
	}

	mask := req.Devices
	if s.Category == session.Capture && st.DualMic {
		mask = e.layout.ApplyDualMic(mask, true)
	}

	if err := e.route(st, s, mask); err != nil {
		return nil, err
	}
	e.activate(s.UseCase)
	if err := e.transport.Open(s); err != nil {
		e.rollback(s)
		return nil, e.transportFailed("open", s, err, "open failed")
	}
	e.register(s)
	return s, nil
}

// CloseSession closes the session with the given id.
func (e *Engine) CloseSession(st *State, id uint64) error {
	s, ok := e.registry.FindID(id)
	if !ok {
		return halerr.New(halerr.InvalidRequest, "unknown session").With("session_id", id)
	}
	err := e.teardown(s.Category, "closed")

	switch s.Category {
	case session.Voice:
		st.VoiceCallActive = false
		e.bus.Publish(events.CallStateChangedEvent{Active: false, Timestamp: e.timestamp()})
	case session.FM:
		st.FMActive = false
		e.bus.Publish(events.FMStateChangedEvent{Active: false, Timestamp: e.timestamp()})
	}
	return err
}

// Shutdown closes every session, newest first. Every session is released
// even when some closes fail; their errors are joined.
func (e *Engine) Shutdown(st *State) error {
	var errs []error
	all := e.registry.All()
	for i := len(all) - 1; i >= 0; i-- {
		errs = append(errs, e.teardown(all[i].Category, "shutdown"))
	}
	st.VoiceCallActive = false
	st.FMActive = false
	return errors.Join(errs...)
}

// register stores s and retires the session it displaced, if any.
func (e *Engine) register(s *session.Session) {
	if old := e.registry.Append(s); old != nil {
		// The new session is already open, so a failed close only costs the old handle.
		_ = e.retire(old, e.transport.Close(old), "replaced")
	}
	e.logger.Debug("Session registered",
		"session_id", s.ID,
		"category", s.Category.String(),
		"use_case", s.UseCase.String(),
		"devices", e.layout.String(s.Devices))
	e.bus.Publish(events.SessionOpenedEvent{
		SessionID:  s.ID,
		Category:   s.Category.String(),
		UseCase:    s.UseCase.String(),
		Devices:    uint32(s.Devices),
		SampleRate: s.SampleRate,
		Channels:   s.Channels,
		BufferSize: s.BufferSize,
		Timestamp:  e.timestamp(),
	})
}

// teardown closes and removes the session in c, if any. Transport close
// errors are reported but the session is gone regardless.
func (e *Engine) teardown(c session.Category, reason string) error {
	s, err := e.registry.RemoveAndClose(c, e.transport.Close)
	if s == nil {
		return nil
	}
	return e.retire(s, err, reason)
}

// retire finishes a session that already left the registry: it releases the
// use case and reports the close.
func (e *Engine) retire(s *session.Session, closeErr error, reason string) error {
	e.release(s.UseCase)
	e.bus.Publish(events.SessionClosedEvent{
		SessionID: s.ID,
		Category:  s.Category.String(),
		UseCase:   s.UseCase.String(),
		Reason:    reason,
		Timestamp: e.timestamp(),
	})
	if closeErr != nil {
		return e.transportFailed("close", s, closeErr, "close failed")
	}
	e.logger.Debug("Session closed", "session_id", s.ID, "reason", reason)
	return nil
}

// release undoes u for a session that left the registry. A verb that other
// sessions are layered on passes to the most recent of them.
func (e *Engine) release(u ucm.UseCase) {
	if e.held(u) {
		return
	}
	if !u.IsVerb() || e.registry.Len() == 0 {
		e.deactivate(u)
		return
	}
	e.handOverVerb(u)
}

// rollback undoes the use case of a session that never got registered.
func (e *Engine) rollback(s *session.Session) {
	if !e.held(s.UseCase) {
		e.deactivate(s.UseCase)
	}
}

// held reports whether a registered session uses u.
func (e *Engine) held(u ucm.UseCase) bool {
	if u == ucm.None {
		return false
	}
	for _, s := range e.registry.All() {
		if s.UseCase == u {
			return true
		}
	}
	return false
}

// handOverVerb moves the verb to the most recent session able to own one and
// layers the rest back on top. Switching verbs drops every modifier.
func (e *Engine) handOverVerb(old ucm.UseCase) {
	survivors := e.registry.All()
	var heir *session.Session
	var verb ucm.UseCase
	for i := len(survivors) - 1; i >= 0; i-- {
		if v, ok := ucm.Select(survivors[i].Kind, false); ok {
			heir, verb = survivors[i], v
			break
		}
	}
	if heir == nil {
		e.deactivate(old)
		for _, s := range survivors {
			e.logger.Warn("Session lost its use case with the verb", "session_id", s.ID, "use_case", s.UseCase.String())
			s.UseCase = ucm.None
		}
		return
	}

	e.deactivate(heir.UseCase)
	e.activate(verb)
	heir.UseCase = verb
	for _, s := range survivors {
		if s != heir {
			e.activate(s.UseCase)
		}
	}
	e.logger.Info("Use case verb handed over", "from", old.String(), "to", verb.String(), "session_id", heir.ID)
}

func (e *Engine) verbActive() bool {
	active, err := e.seq.VerbActive()
	if err != nil {
		e.sequencerFailed("get_verb", ucm.None, err)
	}
	return active
}

func (e *Engine) activate(u ucm.UseCase) {
	if err := e.seq.Activate(u); err != nil {
		e.sequencerFailed("enable", u, err)
	}
}

func (e *Engine) deactivate(u ucm.UseCase) {
	if err := e.seq.Deactivate(u); err != nil {
		e.sequencerFailed("disable", u, err)
	}
}

func (e *Engine) sequencerFailed(op string, u ucm.UseCase, err error) {
	e.logger.Warn("Use case registry call failed, continuing", "operation", op, "use_case", u.String(), "error", err)
	e.bus.Publish(events.SequencerFailedEvent{
		Operation: op,
		UseCase:   u.String(),
		Error:     err.Error(),
		Timestamp: e.timestamp(),
	})
}

// transportFailed logs and publishes a driver error and returns it as
// DeviceUnavailable unless it already carries a code.
func (e *Engine) transportFailed(op string, s *session.Session, err error, msg string) error {
	e.logger.Error("Transport call failed", "operation", op, "session_id", s.ID, "error", err)
	e.bus.Publish(events.TransportFailedEvent{
		Operation: op,
		SessionID: s.ID,
		Error:     err.Error(),
		Timestamp: e.timestamp(),
	})
	var coded *halerr.Error
	if errors.As(err, &coded) {
		return err
	}
	return halerr.Wrap(halerr.DeviceUnavailable, msg, err).With("session_id", s.ID)
}

func (e *Engine) timestamp() string {
	return e.now().Format(time.RFC3339)
}
