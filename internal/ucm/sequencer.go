package ucm

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/smazurov/audiohal/internal/halerr"
)

// Sequencer is the external use case registry.
type Sequencer interface {
	Verb() (string, error)
	SetVerb(name string) error
	SetModifier(name string) error
	DisableModifier(name string) error
	Modifiers() ([]string, error)
	Close() error
}

// Memory is an in-process Sequencer.
type Memory struct {
	mu        sync.Mutex
	verb      string
	modifiers []string
}

// NewMemory returns a registry with no verb set.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Verb() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verb, nil
}

// SetVerb replaces the verb. Switching verbs drops every modifier, matching
// the registry semantics of a verb transition.
func (m *Memory) SetVerb(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name != m.verb {
		m.modifiers = nil
	}
	m.verb = name
	return nil
}

func (m *Memory) SetModifier(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !VerbActive(m.verb) {
		return fmt.Errorf("modifier %q: no active verb", name)
	}
	if !slices.Contains(m.modifiers, name) {
		m.modifiers = append(m.modifiers, name)
	}
	return nil
}

func (m *Memory) DisableModifier(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.modifiers, name)
	if i < 0 {
		return fmt.Errorf("modifier %q not enabled", name)
	}
	m.modifiers = slices.Delete(m.modifiers, i, i+1)
	return nil
}

func (m *Memory) Modifiers() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.modifiers), nil
}

func (m *Memory) Close() error { return nil }

// Adapter turns UseCase transitions into registry calls. Every failure comes
// back as a SequencerUnavailable error for the caller to log; none of them
// should stop routing.
type Adapter struct {
	seq    Sequencer
	logger *slog.Logger
}

// NewAdapter wraps seq.
func NewAdapter(seq Sequencer, logger *slog.Logger) *Adapter {
	return &Adapter{seq: seq, logger: logger}
}

// VerbActive asks the registry for its verb. A failed query counts as no verb, so the
// next session promotes to a verb.
func (a *Adapter) VerbActive() (bool, error) {
	verb, err := a.seq.Verb()
	if err != nil {
		return false, halerr.Wrap(halerr.SequencerUnavailable, "get verb", err)
	}
	return VerbActive(verb), nil
}

// Activate enables u.
func (a *Adapter) Activate(u UseCase) error {
	var err error
	switch {
	case u.IsVerb():
		err = a.seq.SetVerb(u.String())
	case u.IsModifier():
		err = a.seq.SetModifier(u.String())
	default:
		return nil
	}
	if err != nil {
		return halerr.Wrap(halerr.SequencerUnavailable, "enable "+u.String(), err).With("use_case", u.String())
	}
	a.logger.Debug("Use case enabled", "use_case", u.String())
	return nil
}

// Deactivate undoes Activate. A verb falls back to Inactive.
func (a *Adapter) Deactivate(u UseCase) error {
	var err error
	switch {
	case u.IsVerb():
		err = a.seq.SetVerb(Inactive.String())
	case u.IsModifier():
		err = a.seq.DisableModifier(u.String())
	default:
		return nil
	}
	if err != nil {
		return halerr.Wrap(halerr.SequencerUnavailable, "disable "+u.String(), err).With("use_case", u.String())
	}
	a.logger.Debug("Use case disabled", "use_case", u.String())
	return nil
}

// State returns the current verb and modifiers for display.
func (a *Adapter) State() (string, []string, error) {
	verb, err := a.seq.Verb()
	if err != nil {
		return "", nil, halerr.Wrap(halerr.SequencerUnavailable, "get verb", err)
	}
	mods, err := a.seq.Modifiers()
	if err != nil {
		return verb, nil, halerr.Wrap(halerr.SequencerUnavailable, "get modifiers", err)
	}
	return verb, mods, nil
}

// Close releases the registry.
func (a *Adapter) Close() error {
	return a.seq.Close()
}
