package indicator

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/smazurov/audiohal/internal/events"
)

// Manager mirrors call, radio and mute state onto the indicators.
type Manager struct {
	controller Controller
	eventBus   *events.Bus
	unsubs     []func()
	logger     *slog.Logger

	mu    sync.Mutex
	call  bool
	fm    bool
	muted bool
}

// NewManager creates a manager. Call Start to subscribe.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start switches the indicators off and subscribes to call and radio events.
func (m *Manager) Start() {
	m.apply(RoleCall, false, "solid")
	m.apply(RoleFM, false, "")
	m.unsubs = []func(){
		m.eventBus.Subscribe(func(e events.CallStateChangedEvent) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.call = e.Active
			m.apply(RoleCall, e.Active, "solid")
		}),
		m.eventBus.Subscribe(func(e events.FMStateChangedEvent) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.fm = e.Active
			pattern := ""
			if e.Active {
				pattern = "blink"
			}
			m.apply(RoleFM, e.Active, pattern)
		}),
	}
	m.logger.Info("Indicator manager started", "leds", m.controller.Available())
}

// SetMuted lights the mute indicator.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
	m.apply(RoleMute, muted, "solid")
}

// Stop unsubscribes from events.
func (m *Manager) Stop() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.logger.Info("Indicator manager stopped")
}

// State returns the last known call, radio and mute flags.
func (m *Manager) State() (call, fm, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.call, m.fm, m.muted
}

// Controller returns the underlying controller.
func (m *Manager) Controller() Controller {
	return m.controller
}

func (m *Manager) apply(role string, on bool, pattern string) {
	if !slices.Contains(m.controller.Available(), role) {
		return
	}
	if err := m.controller.Set(role, on, pattern); err != nil {
		m.logger.Warn("Failed to set indicator", "led", role, "error", err)
	}
}
