package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/audiohal/internal/api/models"
	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/session"
)

func toSessionData(layout device.Layout, s *session.Session) models.SessionData {
	names := layout.Names(s.Devices)
	if names == nil {
		names = []string{}
	}
	return models.SessionData{
		ID:          s.ID,
		Category:    s.Category.String(),
		UseCase:     s.UseCase.String(),
		Devices:     uint32(s.Devices),
		DeviceNames: names,
		Format:      s.Format.String(),
		Channels:    s.Channels,
		SampleRate:  s.SampleRate,
		BufferSize:  s.BufferSize,
		LatencyMs:   s.Latency.Milliseconds(),
		OpenedAt:    s.OpenedAt,
	}
}

// registerSessionRoutes registers playback and capture session endpoints.
// Voice and FM sessions are started by routing and only appear in listings.
func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-sessions",
		Method:      http.MethodGet,
		Path:        "/api/sessions",
		Summary:     "List Sessions",
		Tags:        []string{"sessions"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.SessionListResponse, error) {
		snap := s.hw.Snapshot()
		layout := s.hw.Layout()
		list := make([]models.SessionData, len(snap.Sessions))
		for i := range snap.Sessions {
			list[i] = toSessionData(layout, &snap.Sessions[i])
		}
		return &models.SessionListResponse{
			Body: models.SessionListData{Sessions: list, Count: len(list)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "open-session",
		Method:        http.MethodPost,
		Path:          "/api/sessions",
		Summary:       "Open Session",
		Description:   "Open a playback or capture session on exactly one device. An existing session of the same category is replaced.",
		Tags:          []string{"sessions"},
		Security:      withAuth(),
		DefaultStatus: http.StatusCreated,
		Errors:        []int{400, 401, 503},
	}, func(_ context.Context, input *models.SessionCreateRequest) (*models.SessionResponse, error) {
		layout := s.hw.Layout()
		mask, err := layout.Parse([]string{input.Body.Device})
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid device", err)
		}

		var sess *session.Session
		switch input.Body.Direction {
		case "output":
			sess, err = s.hw.OpenOutput(mask, input.Body.LowPower)
		case "input":
			sess, err = s.hw.OpenInput(mask, input.Body.SampleRate, input.Body.Channels)
		default:
			return nil, huma.Error400BadRequest("direction must be output or input")
		}
		if err != nil {
			return nil, toHTTPError("Failed to open session", err)
		}

		return &models.SessionResponse{Body: toSessionData(layout, sess)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "close-session",
		Method:      http.MethodDelete,
		Path:        "/api/sessions/{id}",
		Summary:     "Close Session",
		Tags:        []string{"sessions"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 503},
	}, func(_ context.Context, input *models.SessionDeleteRequest) (*struct{}, error) {
		if err := s.hw.CloseSession(input.ID); err != nil {
			return nil, toHTTPError("Failed to close session", err)
		}
		return &struct{}{}, nil
	})
}
