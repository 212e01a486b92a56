// Package logging sets up slog for the daemon: one logger per module, each
// with its own level that can move after the logger was handed out.
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text", // or "json"
//		Modules: map[string]string{"routing": "debug", "api": "warn"},
//	})
//
//	logger := logging.GetLogger("routing").With("session_id", s.ID)
//	logger.Info("Session routed", "devices", layout.String(mask))
//
// Modules without an override use the global level. The TOML form is
//
//	[logging]
//	level = "info"
//
//	[logging.modules]
//	routing = "debug"
//
// # Output Destinations
//
// Every logger writes to stdout when something is attached to it and to the
// systemd journal when journald runs. The history behind the log stream gets
// every record regardless.
//
// # Routing Context
//
// The attributes session_id, category, use_case and devices are lifted out
// of each record into [Context], at any group depth. An error attribute
// carrying a halerr code adds it as ErrorCode. The journal gets the same
// values as top level fields:
//
//	journalctl -t audiohal SESSION_ID=3
//	journalctl -t audiohal USE_CASE="Voice Call"
//	journalctl -t audiohal ERROR_CODE=DEVICE_UNAVAILABLE
//	journalctl -t audiohal MODULE=routing -p err
//
// # History
//
// The last 1000 entries are kept in a [History] ([GetHistory]), which the
// log stream replays through a [Filter] before going live. [SetLogCallback]
// receives each entry as it is written.
package logging
