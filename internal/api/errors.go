package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/audiohal/internal/halerr"
)

// toHTTPError maps router error codes onto HTTP status codes.
func toHTTPError(msg string, err error) error {
	switch halerr.CodeOf(err) {
	case halerr.InvalidRequest:
		return huma.Error400BadRequest(msg, err)
	case halerr.DeviceUnavailable:
		return huma.Error503ServiceUnavailable(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}
