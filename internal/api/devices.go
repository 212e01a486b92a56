package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/audiohal/internal/api/models"
	"github.com/smazurov/audiohal/internal/driver"
	"github.com/smazurov/audiohal/internal/session"
)

// registerDeviceRoutes registers the device layout and PCM listing endpoints.
func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-layout",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "Device Layout",
		Description: "Get the mask bit assigned to every device name",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.LayoutResponse, error) {
		bits := s.hw.Layout().Bits()
		data := models.LayoutData{Devices: make(map[string]uint32, len(bits))}
		for name, bit := range bits {
			data.Devices[name] = uint32(bit)
		}
		return &models.LayoutResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-pcms",
		Method:      http.MethodGet,
		Path:        "/api/devices/pcm",
		Summary:     "List PCM Endpoints",
		Description: "List the kernel PCM devices with their supported rates, formats and channel counts",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.PCMListResponse, error) {
		pcms, err := driver.ListPCMs()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to enumerate PCM devices", err)
		}
		if pcms == nil {
			pcms = []driver.PCM{}
		}
		resp := &models.PCMListResponse{}
		resp.Body.PCMs = pcms
		resp.Body.Count = len(pcms)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-input-buffer-size",
		Method:      http.MethodGet,
		Path:        "/api/input-buffer-size",
		Summary:     "Input Buffer Size",
		Description: "Get the capture buffer size for a sample rate, format and channel count",
		Tags:        []string{"sessions"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, input *models.InputBufferSizeRequest) (*models.InputBufferSizeResponse, error) {
		resp := &models.InputBufferSizeResponse{}
		resp.Body.Bytes = s.hw.InputBufferSize(input.SampleRate, session.Format(input.Format), input.Channels)
		return resp, nil
	})
}
