package collectors

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smazurov/audiohal/internal/events"
)

func gatherValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func waitForValue(t *testing.T, name string, labels map[string]string, want float64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for gatherValue(t, name, labels) != want {
		if time.Now().After(deadline) {
			t.Fatalf("%s%v = %v, want %v", name, labels, gatherValue(t, name, labels), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEventCollector(t *testing.T) {
	bus := events.New()
	c := NewEventCollector(bus)
	c.Start()
	defer c.Stop()

	bus.Publish(events.CallStateChangedEvent{Active: true})
	waitForValue(t, "audiohal_voice_call_active", nil, 1)

	failures := map[string]string{"operation": "collector_test"}
	before := gatherValue(t, "audiohal_driver_failures_total", failures)
	bus.Publish(events.TransportFailedEvent{Operation: "collector_test"})
	waitForValue(t, "audiohal_driver_failures_total", failures, before+1)

	cards := map[string]string{"action": "remove"}
	before = gatherValue(t, "audiohal_alsa_card_changes_total", cards)
	bus.Publish(events.CardChangedEvent{Action: "remove", Card: 1})
	waitForValue(t, "audiohal_alsa_card_changes_total", cards, before+1)

	bus.Publish(events.CallStateChangedEvent{Active: false})
	waitForValue(t, "audiohal_voice_call_active", nil, 0)
}

func TestEventCollectorStop(t *testing.T) {
	bus := events.New()
	c := NewEventCollector(bus)
	c.Start()
	c.Stop()
	if c.unsubs != nil {
		t.Error("Stop() should clear subscriptions")
	}
	bus.Publish(events.ModeChangedEvent{Mode: "normal"})
}
