package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/audiohal/internal/api/models"
	"github.com/smazurov/audiohal/internal/device"
	"github.com/smazurov/audiohal/internal/routing"
)

func toAccessoriesData(a routing.Accessories) models.AccessoriesData {
	return models.AccessoriesData{
		DualMic:      a.DualMic,
		ANC:          a.ANC,
		TTYMode:      a.TTY.String(),
		BluetoothVGS: a.BluetoothVGS,
	}
}

// registerStateRoutes registers mode, routing, accessory and volume endpoints.
func (s *Server) registerStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "Get State",
		Description: "Get the routing state, use case registry and open sessions",
		Tags:        []string{"routing"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StateResponse, error) {
		snap := s.hw.Snapshot()
		layout := s.hw.Layout()

		sessions := make([]models.SessionData, len(snap.Sessions))
		for i := range snap.Sessions {
			sessions[i] = toSessionData(layout, &snap.Sessions[i])
		}
		modifiers := snap.Modifiers
		if modifiers == nil {
			modifiers = []string{}
		}

		return &models.StateResponse{
			Body: models.StateData{
				Mode:            snap.State.Mode.String(),
				Accessories:     toAccessoriesData(snap.State.Accessories),
				VoiceCallActive: snap.State.VoiceCallActive,
				FMActive:        snap.State.FMActive,
				MicMuted:        s.hw.MicMute(),
				Verb:            snap.Verb,
				Modifiers:       modifiers,
				Transport:       snap.Transport,
				Sessions:        sessions,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "route-devices",
		Method:      http.MethodPost,
		Path:        "/api/route",
		Summary:     "Route Devices",
		Description: "Apply a device set. Starts or stops voice calls and FM radio as the mode and devices require.",
		Tags:        []string{"routing"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 503},
	}, func(_ context.Context, input *models.RouteRequest) (*models.RouteResponse, error) {
		mask, err := s.hw.Layout().Parse(input.Body.Devices)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid device list", err)
		}
		if err := s.hw.RouteDevices(mask); err != nil {
			return nil, toHTTPError("Failed to route devices", err)
		}

		resp := &models.RouteResponse{}
		resp.Body.Devices = s.hw.Layout().Names(mask)
		if resp.Body.Devices == nil {
			resp.Body.Devices = []string{}
		}
		resp.Body.Mode = s.hw.Mode().String()
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-mode",
		Method:      http.MethodPut,
		Path:        "/api/mode",
		Summary:     "Set Mode",
		Description: "Change the telephony mode. Takes effect on the next route request.",
		Tags:        []string{"routing"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *models.ModeRequest) (*models.ModeResponse, error) {
		mode, err := device.ParseMode(input.Body.Mode)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid mode", err)
		}
		s.hw.SetMode(mode)

		resp := &models.ModeResponse{}
		resp.Body.Mode = mode.String()
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-accessories",
		Method:      http.MethodGet,
		Path:        "/api/accessories",
		Summary:     "Get Accessories",
		Tags:        []string{"accessories"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.AccessoriesResponse, error) {
		return &models.AccessoriesResponse{Body: toAccessoriesData(s.hw.Accessories())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-accessories",
		Method:      http.MethodPut,
		Path:        "/api/accessories",
		Summary:     "Set Accessories",
		Description: "Toggle accessory flags. Changed flags re-route the open sessions.",
		Tags:        []string{"accessories"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 503},
	}, func(_ context.Context, input *models.AccessoriesRequest) (*models.AccessoriesResponse, error) {
		b := input.Body
		var errs []error
		if b.DualMic != nil {
			errs = append(errs, s.hw.SetDualMic(*b.DualMic))
		}
		if b.ANC != nil {
			errs = append(errs, s.hw.SetANC(*b.ANC))
		}
		if b.TTYMode != nil {
			errs = append(errs, s.hw.SetTTYMode(device.ParseTTYMode(*b.TTYMode)))
		}
		if b.BluetoothVGS != nil {
			errs = append(errs, s.hw.SetBluetoothVGS(*b.BluetoothVGS))
		}
		if err := errors.Join(errs...); err != nil {
			return nil, toHTTPError("Failed to apply accessories", err)
		}
		return &models.AccessoriesResponse{Body: toAccessoriesData(s.hw.Accessories())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-parameters",
		Method:      http.MethodGet,
		Path:        "/api/parameters",
		Summary:     "Get Parameters",
		Description: "Get the dual mic, FM and Bluetooth volume control flags",
		Tags:        []string{"accessories"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.ParametersResponse, error) {
		p := s.hw.Parameters()
		return &models.ParametersResponse{
			Body: models.ParametersData{DualMic: p.DualMic, FMOn: p.FMOn, VGS: p.VGS},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-volume",
		Method:      http.MethodPut,
		Path:        "/api/volume",
		Summary:     "Set Volume",
		Description: "Set voice and FM volume, microphone mute and Bluetooth SCO rate",
		Tags:        []string{"volume"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 503},
	}, func(_ context.Context, input *models.VolumeRequest) (*struct{}, error) {
		b := input.Body
		if b.Voice != nil {
			if err := s.hw.SetVoiceVolume(*b.Voice); err != nil {
				return nil, toHTTPError("Failed to set voice volume", err)
			}
		}
		if b.FM != nil {
			if err := s.hw.SetFmVolume(*b.FM); err != nil {
				return nil, toHTTPError("Failed to set FM volume", err)
			}
		}
		if b.MicMute != nil {
			if err := s.hw.SetMicMute(*b.MicMute); err != nil {
				return nil, toHTTPError("Failed to set microphone mute", err)
			}
			if s.options.Indicators != nil {
				s.options.Indicators.SetMuted(*b.MicMute)
			}
		}
		if b.BtscoRate != nil {
			if err := s.hw.SetBtscoRate(*b.BtscoRate); err != nil {
				return nil, toHTTPError("Failed to set Bluetooth SCO rate", err)
			}
		}
		return &struct{}{}, nil
	})
}
