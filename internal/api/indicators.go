package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/audiohal/internal/api/models"
)

// registerIndicatorRoutes registers LED control endpoints
func (s *Server) registerIndicatorRoutes() {
	if s.options.Indicators == nil {
		s.logger.Debug("Indicator manager not available, skipping indicator routes")
		return
	}
	manager := s.options.Indicators

	huma.Register(s.api, huma.Operation{
		OperationID: "control-indicator",
		Method:      http.MethodPost,
		Path:        "/api/indicators",
		Summary:     "Control Indicator",
		Description: "Set an LED directly. The next call or FM event overrides it.",
		Tags:        []string{"indicators"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.IndicatorRequest) (*struct{}, error) {
		pattern := ""
		if input.Body.Pattern != nil {
			pattern = *input.Body.Pattern
		}
		if err := manager.Controller().Set(input.Body.Name, input.Body.Enabled, pattern); err != nil {
			return nil, huma.Error400BadRequest("Failed to control LED", err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-indicators",
		Method:      http.MethodGet,
		Path:        "/api/indicators",
		Summary:     "Get Indicators",
		Description: "Get the LEDs and patterns of this board and the indicator state",
		Tags:        []string{"indicators"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.IndicatorCapabilitiesResponse, error) {
		resp := &models.IndicatorCapabilitiesResponse{}
		resp.Body.Available = manager.Controller().Available()
		resp.Body.Patterns = manager.Controller().Patterns()
		resp.Body.Call, resp.Body.FM, resp.Body.Muted = manager.State()
		return resp, nil
	})

	s.logger.Info("Indicator routes registered")
}
