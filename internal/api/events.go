package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/audiohal/internal/events"
)

// ConnectedEvent is the first message of every event stream.
type ConnectedEvent struct {
	Message   string `json:"message" example:"SSE connection established"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z"`
}

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of routing, session, call, FM, mode, accessory and sound card events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"connected":         ConnectedEvent{},
		"route-applied":     events.RouteAppliedEvent{},
		"session-opened":    events.SessionOpenedEvent{},
		"session-closed":    events.SessionClosedEvent{},
		"call-state":        events.CallStateChangedEvent{},
		"fm-state":          events.FMStateChangedEvent{},
		"mode-changed":      events.ModeChangedEvent{},
		"accessory-changed": events.AccessoryChangedEvent{},
		"sequencer-failed":  events.SequencerFailedEvent{},
		"transport-failed":  events.TransportFailedEvent{},
		"card-changed":      events.CardChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.RouteAppliedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SessionOpenedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SessionClosedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CallStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.FMStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ModeChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.AccessoryChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SequencerFailedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.TransportFailedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CardChangedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		if err := send.Data(ConnectedEvent{
			Message:   "SSE connection established",
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
