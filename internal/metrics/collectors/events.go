// Package collectors feeds the audiohal metrics from the event bus and from
// the kernel sound card listing.
package collectors

import (
	"log/slog"

	"github.com/smazurov/audiohal/internal/events"
	"github.com/smazurov/audiohal/internal/logging"
	"github.com/smazurov/audiohal/internal/metrics"
)

// EventCollector turns router events into metric updates.
type EventCollector struct {
	bus    *events.Bus
	logger *slog.Logger
	unsubs []func()
}

// NewEventCollector creates a collector on bus.
func NewEventCollector(bus *events.Bus) *EventCollector {
	return &EventCollector{
		bus:    bus,
		logger: logging.GetLogger("metrics"),
	}
}

// Start subscribes to the bus.
func (c *EventCollector) Start() {
	c.unsubs = []func(){
		c.bus.Subscribe(func(e events.RouteAppliedEvent) {
			metrics.RecordRoute(e.Category)
		}),
		c.bus.Subscribe(func(e events.SessionOpenedEvent) {
			metrics.RecordSessionOpened(e.Category, e.UseCase)
		}),
		c.bus.Subscribe(func(e events.SessionClosedEvent) {
			metrics.RecordSessionClosed(e.Category, e.Reason)
		}),
		c.bus.Subscribe(func(e events.CallStateChangedEvent) {
			metrics.SetVoiceCallActive(e.Active)
		}),
		c.bus.Subscribe(func(e events.FMStateChangedEvent) {
			metrics.SetFMActive(e.Active)
		}),
		c.bus.Subscribe(func(e events.ModeChangedEvent) {
			metrics.RecordModeChange(e.Mode)
		}),
		c.bus.Subscribe(func(e events.AccessoryChangedEvent) {
			metrics.RecordAccessoryChange(e.Name)
		}),
		c.bus.Subscribe(func(e events.SequencerFailedEvent) {
			metrics.RecordSequencerFailure(e.Operation)
		}),
		c.bus.Subscribe(func(e events.TransportFailedEvent) {
			metrics.RecordTransportFailure(e.Operation)
		}),
		c.bus.Subscribe(func(e events.CardChangedEvent) {
			metrics.RecordCardChange(e.Action)
		}),
	}
	c.logger.Debug("Event metrics collector started")
}

// Stop unsubscribes from the bus.
func (c *EventCollector) Stop() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}
