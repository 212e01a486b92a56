// Package exporters serves the metrics over HTTP.
package exporters

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns the Prometheus metrics HTTP handler.
// It serves everything registered through promauto.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
