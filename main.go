package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/audiohal/cmd"
	"github.com/smazurov/audiohal/internal/api"
	"github.com/smazurov/audiohal/internal/config"
	"github.com/smazurov/audiohal/internal/driver"
	"github.com/smazurov/audiohal/internal/events"
	"github.com/smazurov/audiohal/internal/hal"
	"github.com/smazurov/audiohal/internal/indicator"
	"github.com/smazurov/audiohal/internal/logging"
	"github.com/smazurov/audiohal/internal/metrics/collectors"
	"github.com/smazurov/audiohal/internal/metrics/exporters"
	"github.com/smazurov/audiohal/internal/ucm"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"audiohal.toml"`

	// Server settings
	Port       string `help:"Port to listen on" short:"p" default:":8091" toml:"server.port" env:"SERVER_PORT"`
	CORSOrigin string `help:"Allowed CORS origin" default:"*" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`

	// Accessory settings
	AccessoriesFile string `help:"Accessory state file, reloaded on change" default:"accessories.toml" toml:"accessories.file" env:"ACCESSORIES_FILE"`

	// Metrics settings
	MetricsEnabled     bool   `help:"Serve Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`
	MetricsPCMInterval string `help:"Interval between /proc/asound/pcm polls" default:"30s" toml:"metrics.pcm_interval" env:"METRICS_PCM_INTERVAL"`

	// Hotplug settings
	HotplugEnabled bool `help:"Watch for sound card hotplug" default:"true" toml:"hotplug.enabled" env:"HOTPLUG_ENABLED"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingRouting   string `help:"Routing logging level" default:"info" toml:"logging.routing" env:"LOGGING_ROUTING"`
	LoggingUCM       string `help:"Use case registry logging level" default:"info" toml:"logging.ucm" env:"LOGGING_UCM"`
	LoggingDriver    string `help:"Driver transport logging level" default:"info" toml:"logging.driver" env:"LOGGING_DRIVER"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingConfig    string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
	LoggingIndicator string `help:"Indicator LED logging level" default:"info" toml:"logging.indicator" env:"LOGGING_INDICATOR"`
	LoggingMetrics   string `help:"Metrics logging level" default:"info" toml:"logging.metrics" env:"LOGGING_METRICS"`
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"routing":   opts.LoggingRouting,
				"ucm":       opts.LoggingUCM,
				"driver":    opts.LoggingDriver,
				"api":       opts.LoggingAPI,
				"config":    opts.LoggingConfig,
				"indicator": opts.LoggingIndicator,
				"metrics":   opts.LoggingMetrics,
			},
		})

		logger := logging.GetLogger("main")

		file, err := config.LoadFile(opts.Config)
		if err != nil {
			logger.Error("Invalid configuration", "error", err)
			os.Exit(1)
		}

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Forward log records to SSE log stream subscribers
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.ToLogEvent(entry))
		})

		transport, err := driver.New(file.Driver, file.Devices, logging.GetLogger("driver"))
		if err != nil {
			logger.Error("Failed to create driver transport", "error", err)
			os.Exit(1)
		}

		var sequencer ucm.Sequencer = ucm.NewMemory()
		if file.Sequencer.Backend == config.SequencerFile {
			store, storeErr := ucm.NewFileStore(file.Sequencer.StatePath)
			if storeErr != nil {
				logger.Error("Failed to open use case state", "path", file.Sequencer.StatePath, "error", storeErr)
				os.Exit(1)
			}
			sequencer = store
		}

		hw := hal.New(hal.Options{
			Transport: transport,
			Sequencer: sequencer,
			Layout:    file.Devices,
			Defaults:  file.Session,
			Bus:       eventBus,
			Logger:    logging.GetLogger("routing"),
		})
		if initErr := hw.InitCheck(); initErr != nil {
			logger.Error("Hardware init check failed", "error", initErr)
			os.Exit(1)
		}

		// Metrics
		eventCollector := collectors.NewEventCollector(eventBus)
		var pcmCollector *collectors.PCMCollector
		if opts.MetricsEnabled {
			// Parse poll interval
			interval, parseErr := time.ParseDuration(opts.MetricsPCMInterval)
			if parseErr != nil {
				interval = 30 * time.Second
			}
			pcmCollector = collectors.NewPCMCollector(interval)
			eventBus.Subscribe(func(events.CardChangedEvent) {
				pcmCollector.Refresh()
			})
		}

		// Indicator LEDs follow call, FM and mute state
		indicatorLogger := logging.GetLogger("indicator")
		indicators := indicator.NewManager(indicator.New(file.Indicators, indicatorLogger), eventBus, indicatorLogger)

		// Accessory flags come from a watched file
		accessories := config.NewConfigWatcher(opts.AccessoriesFile, config.LoadAccessories, logging.GetLogger("config"),
			config.WithInitialLoad[config.Accessories](),
			config.WithErrorHandler[config.Accessories](func(err error) {
				logger.Warn("Ignoring invalid accessories file", "error", err)
			}),
		)
		accessories.OnReload(func(a config.Accessories) {
			if applyErr := a.Apply(hw); applyErr != nil {
				logger.Warn("Failed to apply accessories", "error", applyErr)
				return
			}
			logger.Info("Accessories applied", "mode", a.Mode, "dual_mic", a.DualMic, "anc", a.ANC, "tty_mode", a.TTYMode)
		})

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			CORSOrigin:   opts.CORSOrigin,
			Hardware:     hw,
			EventBus:     eventBus,
			Indicators:   indicators,
		}
		if opts.MetricsEnabled {
			apiOpts.MetricsHandler = exporters.HTTPHandler()
		}

		server := api.NewServer(apiOpts)

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			eventCollector.Start()
			if pcmCollector != nil {
				if startErr := pcmCollector.Start(ctx); startErr != nil {
					logger.Warn("Failed to start PCM collector", "error", startErr)
				}
			}
			indicators.Start()

			if startErr := accessories.Start(); startErr != nil {
				logger.Warn("Accessories file not watched", "path", opts.AccessoriesFile, "error", startErr)
			}

			if opts.HotplugEnabled {
				go func() {
					if watchErr := driver.WatchCards(ctx, eventBus, logging.GetLogger("driver")); watchErr != nil {
						logger.Warn("Sound card hotplug unavailable", "error", watchErr)
					}
				}()
			}

			if sent, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("Failed to notify systemd", "error", notifyErr)
			} else if sent {
				logger.Debug("Notified systemd of readiness")
			}

			logger.Info("Starting HTTP server", "port", opts.Port, "transport", transport.Name())
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			daemon.SdNotify(false, daemon.SdNotifyStopping)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if stopErr := server.Stop(shutdownCtx); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Close sessions after the API stops accepting requests
			if closeErr := hw.Close(); closeErr != nil {
				logger.Error("Error closing hardware", "error", closeErr)
			}

			cancel()
			accessories.Stop()
			indicators.Stop()
			eventCollector.Stop()
			if pcmCollector != nil {
				pcmCollector.Stop()
			}
		})
	})

	cli.Root().AddCommand(cmd.CreateSimulateCmd())
	cli.Root().AddCommand(cmd.CreateDevicesCmd())

	// Run the CLI
	cli.Run()
}
