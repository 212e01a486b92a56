//go:build !linux

package hotplug

import (
	"context"
	"errors"
)

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// CardEvent describes one sound card or PCM node change.
type CardEvent struct {
	Action string
	Card   int
	Node   string
	KObj   string
}

// IsCard reports whether the event concerns the card rather than one PCM.
func (e CardEvent) IsCard() bool { return e.Node == "" }

// Monitor is unavailable off Linux.
type Monitor struct{}

// NewMonitor always fails off Linux.
func NewMonitor() (*Monitor, error) {
	return nil, errors.New("hotplug monitoring requires linux")
}

func (m *Monitor) Close() error { return nil }

func (m *Monitor) Run(ctx context.Context, out chan<- CardEvent) error {
	close(out)
	return errors.New("hotplug monitoring requires linux")
}
