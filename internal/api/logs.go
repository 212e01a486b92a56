package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/audiohal/internal/events"
	"github.com/smazurov/audiohal/internal/logging"
)

// LogStreamInput narrows the log stream.
type LogStreamInput struct {
	Module    string `query:"module" doc:"Only records from this module" example:"routing"`
	Level     string `query:"level" enum:"debug,info,warn,error" doc:"Minimum level"`
	SessionID uint64 `query:"session_id" doc:"Only records about this session"`
}

func (in *LogStreamInput) filter() logging.Filter {
	return logging.Filter{Module: in.Module, MinLevel: in.Level, SessionID: in.SessionID}
}

// registerLogRoutes registers the log streaming SSE endpoint.
func (s *Server) registerLogRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends the matching history first, then streams new records. " +
			"Filter by module, minimum level or session to follow one audio path.",
		Tags:     []string{"logs"},
		Security: withAuth(),
		Errors:   []int{401, 422},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, input *LogStreamInput, send sse.Sender) {
		filter := input.filter()
		eventCh := make(chan any, 100)
		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		// Subscribing before the replay may repeat a record at the seam
		// but never drops one.
		if history := logging.GetHistory(); history != nil {
			for _, entry := range history.Entries(filter) {
				if err := send.Data(ToLogEvent(entry)); err != nil {
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				ev, ok := event.(events.LogEntryEvent)
				if !ok || !filter.Match(fromLogEvent(ev)) {
					continue
				}
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}

// ToLogEvent converts a recorded log entry to its bus event.
func ToLogEvent(entry logging.LogEntry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		SessionID:  entry.Context.SessionID,
		Category:   entry.Context.Category,
		UseCase:    entry.Context.UseCase,
		Devices:    entry.Context.Devices,
		ErrorCode:  entry.Context.ErrorCode,
		Attributes: entry.Attributes,
	}
}

// fromLogEvent recovers the fields a Filter looks at.
func fromLogEvent(ev events.LogEntryEvent) logging.LogEntry {
	return logging.LogEntry{
		Level:   ev.Level,
		Module:  ev.Module,
		Context: logging.Context{SessionID: ev.SessionID},
	}
}
