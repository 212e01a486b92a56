package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// quietPaths are polled by supervisors and dashboards; they log at debug.
var quietPaths = map[string]bool{
	"/api/health": true,
	"/api/state":  true,
}

// NewLoggingMiddleware logs completed requests with a level chosen from the
// status code.
func NewLoggingMiddleware(logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		method := ctx.Method()
		path := ctx.URL().Path

		logAttrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.String("remote_addr", ctx.RemoteAddr()),
		}
		if query := ctx.URL().RawQuery; query != "" {
			logAttrs = append(logAttrs, slog.String("query", query))
		}
		if userAgent := ctx.Header("User-Agent"); userAgent != "" {
			logAttrs = append(logAttrs, slog.String("user_agent", userAgent))
		}

		next(ctx)

		status := ctx.Status()
		logAttrs = append(logAttrs,
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		)

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case method == http.MethodOptions, quietPaths[path]:
			level = slog.LevelDebug
		}
		logger.LogAttrs(ctx.Context(), level, "HTTP request completed", logAttrs...)
	}
}
