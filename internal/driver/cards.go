package driver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/smazurov/audiohal/internal/events"
	"github.com/smazurov/audiohal/pkg/linuxav/hotplug"
)

// CardPublisher receives sound card hotplug events.
type CardPublisher interface {
	Publish(ev events.Event)
}

// WatchCards publishes a CardChangedEvent for every sound card or PCM node
// the kernel adds or removes. It blocks until ctx is cancelled.
func WatchCards(ctx context.Context, bus CardPublisher, logger *slog.Logger) error {
	monitor, err := hotplug.NewMonitor()
	if err != nil {
		return err
	}
	defer monitor.Close()

	in := make(chan hotplug.CardEvent, 16)
	runErr := make(chan error, 1)
	go func() { runErr <- monitor.Run(ctx, in) }()

	logger.Info("Watching sound card hotplug")
	PublishCardEvents(in, bus, logger)

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// PublishCardEvents forwards events from in until it is closed.
func PublishCardEvents(in <-chan hotplug.CardEvent, bus CardPublisher, logger *slog.Logger) {
	for ev := range in {
		logger.Info("Sound card changed", "action", ev.Action, "card", ev.Card, "node", ev.Node)
		bus.Publish(events.CardChangedEvent{
			Action:    ev.Action,
			Card:      ev.Card,
			Node:      ev.Node,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}
