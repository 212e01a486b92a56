// Package metrics provides Prometheus metrics for routing, sessions and the
// sound card.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audiohal"

var (
	routesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "routes_applied_total",
		Help:      "Routes accepted by the driver transport",
	}, []string{"category"})

	modeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "mode_changes_total",
		Help:      "Telephony mode changes",
	}, []string{"mode"})

	accessoryChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "accessory_changes_total",
		Help:      "Accessory toggles",
	}, []string{"accessory"})

	sessionsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "opened_total",
		Help:      "Sessions opened",
	}, []string{"category", "use_case"})

	sessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "closed_total",
		Help:      "Sessions closed",
	}, []string{"category", "reason"})

	sessionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Open sessions per category",
	}, []string{"category"})

	voiceCallActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voice_call_active",
		Help:      "1 while a voice call is up",
	})

	fmActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fm_active",
		Help:      "1 while FM radio is playing",
	})

	sequencerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ucm",
		Name:      "failures_total",
		Help:      "Use case registry calls that failed",
	}, []string{"operation"})

	transportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "driver",
		Name:      "failures_total",
		Help:      "Driver transport calls that failed",
	}, []string{"operation"})

	cardChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alsa",
		Name:      "card_changes_total",
		Help:      "Sound card and PCM node hotplug events",
	}, []string{"action"})

	pcmSubstreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "alsa",
		Name:      "pcm_substreams",
		Help:      "Substreams per PCM device and direction from /proc/asound/pcm",
	}, []string{"pcm", "stream"})
)

// RecordCardChange counts a hotplug event.
func RecordCardChange(action string) {
	cardChanges.WithLabelValues(action).Inc()
}

// RecordRoute counts an applied route.
func RecordRoute(category string) {
	routesApplied.WithLabelValues(category).Inc()
}

// RecordModeChange counts a mode change.
func RecordModeChange(mode string) {
	modeChanges.WithLabelValues(mode).Inc()
}

// RecordAccessoryChange counts an accessory toggle.
func RecordAccessoryChange(accessory string) {
	accessoryChanges.WithLabelValues(accessory).Inc()
}

// RecordSessionOpened counts an open and raises the active gauge.
func RecordSessionOpened(category, useCase string) {
	sessionsOpened.WithLabelValues(category, useCase).Inc()
	sessionsActive.WithLabelValues(category).Inc()
}

// RecordSessionClosed counts a close and lowers the active gauge.
func RecordSessionClosed(category, reason string) {
	sessionsClosed.WithLabelValues(category, reason).Inc()
	sessionsActive.WithLabelValues(category).Dec()
}

// SetVoiceCallActive sets the voice call gauge.
func SetVoiceCallActive(active bool) {
	voiceCallActive.Set(boolToFloat(active))
}

// SetFMActive sets the FM gauge.
func SetFMActive(active bool) {
	fmActive.Set(boolToFloat(active))
}

// RecordSequencerFailure counts a failed use case registry call.
func RecordSequencerFailure(operation string) {
	sequencerFailures.WithLabelValues(operation).Inc()
}

// RecordTransportFailure counts a failed driver call.
func RecordTransportFailure(operation string) {
	transportFailures.WithLabelValues(operation).Inc()
}

// SetPCMSubstreams sets the substream count of a PCM direction.
func SetPCMSubstreams(pcm, stream string, count float64) {
	pcmSubstreams.WithLabelValues(pcm, stream).Set(count)
}

// ResetPCMSubstreams drops every PCM series, for a rescan.
func ResetPCMSubstreams() {
	pcmSubstreams.Reset()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
