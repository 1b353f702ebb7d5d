package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/osmsurvey/pkg/address"
	"github.com/NERVsystems/osmsurvey/pkg/config"
	"github.com/NERVsystems/osmsurvey/pkg/console"
	"github.com/NERVsystems/osmsurvey/pkg/location"
	"github.com/NERVsystems/osmsurvey/pkg/monitoring"
	"github.com/NERVsystems/osmsurvey/pkg/osm"
	"github.com/NERVsystems/osmsurvey/pkg/survey"
	"github.com/NERVsystems/osmsurvey/pkg/tracing"
	ver "github.com/NERVsystems/osmsurvey/pkg/version"
)

var (
	configPath      string
	showVersionFlag bool
	debug           bool
	origin          string
	replayFile      string
	monitoringAddr  string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file (default: ./osmsurvey.yaml if present)")
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&origin, "origin", "", "Fixed surveyor position (decimal, DMS or MGRS); selects the static location source")
	flag.StringVar(&replayFile, "replay", "", "JSON-lines track to replay; selects the replay location source")
	flag.StringVar(&monitoringAddr, "monitoring-addr", "", "Serve Prometheus metrics and health endpoints on this address")
}

func main() {
	flag.Parse()

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	if err := run(); err != nil {
		slog.Error("survey stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracing(ctx, tracing.Options{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		Environment: cfg.Tracing.Environment,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, ver.BuildVersion)
	if err != nil {
		// tracing is optional
		logger.Error("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()
		if cfg.Tracing.Endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	var healthChecker *monitoring.HealthChecker
	if cfg.Monitoring.Addr != "" {
		healthChecker = monitoring.NewHealthChecker(monitoring.ServiceName, ver.BuildVersion)
		defer healthChecker.Shutdown()
	}
	hooks := monitoring.ClientHooks(healthChecker)

	overpass := osm.NewOverpassClient(cfg.Overpass.URL, newClient("overpass", cfg.Overpass, cfg.UserAgent, hooks, logger))
	notes := osm.NewNotesClient(cfg.Notes.URL, newClient("notes", cfg.Notes, cfg.UserAgent, hooks, logger))

	provider, closeProvider, err := newProvider(cfg.Location)
	if err != nil {
		return err
	}
	defer closeProvider()

	locale := address.MatchLocale(cfg.Survey.Locale)
	formatter, err := address.NewFormatter(address.Mode(cfg.Survey.Formatter), locale)
	if err != nil {
		return err
	}

	loop := survey.NewLoop()
	term := console.New(os.Stdin, os.Stdout, cfg.Survey.CancelToken)
	defer term.Close()
	surface := console.NewSurface()

	s, err := survey.New(survey.Deps{
		Provider:  provider,
		Source:    overpass,
		Notes:     notes,
		Surface:   surface,
		Notifier:  term,
		Prompter:  term,
		Scheduler: loop,
		Logger:    logger,
	}, survey.Settings{
		Tracker: survey.TrackerConfig{
			CheckInterval: cfg.Location.CheckInterval,
			Timeout:       cfg.Location.Timeout,
			MaximumAge:    cfg.Location.MaximumAge,
			HighAccuracy:  cfg.Location.HighAccuracy,
			MaxAccuracy:   cfg.Location.MaxAccuracy,
			FetchRadius:   cfg.Fetch.Radius,
			MaxZoom:       cfg.Fetch.MaxZoom,
		},
		DrawnCacheSize: cfg.Fetch.DrawnCacheSize,
		Locale:         locale,
		Formatter:      formatter,
	})
	if err != nil {
		return err
	}

	logger.Info("starting OpenStreetMap survey",
		"version", ver.BuildVersion,
		"locale", locale.Tag.String(),
		"formatter", cfg.Survey.Formatter,
		"location_source", cfg.Location.Source,
		"fetch_radius", cfg.Fetch.Radius,
		"overpass_url", cfg.Overpass.URL,
		"notes_url", cfg.Notes.URL,
		"user_agent", cfg.UserAgent,
		"monitoring_addr", cfg.Monitoring.Addr)

	if healthChecker != nil {
		monitors := startServiceMonitoring(cfg, healthChecker, overpass, logger)
		defer func() {
			for _, m := range monitors {
				m.Stop()
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := loop.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		// quitting the console ends the survey
		defer cancel()
		defer term.Close()
		return console.NewCommands(term, surface, loop, logger).Run(ctx)
	})

	if healthChecker != nil {
		srv := newMonitoringServer(cfg.Monitoring.Addr, healthChecker)
		g.Go(func() error {
			logger.Info("starting monitoring server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("monitoring server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	s.Start(ctx)

	err = g.Wait()
	logger.Info("survey stopped")
	return err
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config) {
	if debug {
		cfg.Log.Level = "debug"
	}
	if origin != "" {
		cfg.Location.Source = "static"
		cfg.Location.Static = origin
	}
	if replayFile != "" {
		cfg.Location.Source = "replay"
		cfg.Location.ReplayFile = replayFile
	}
	if monitoringAddr != "" {
		cfg.Monitoring.Addr = monitoringAddr
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func newClient(service string, sc config.ServiceConfig, userAgent string, hooks *osm.MonitoringHooks, logger *slog.Logger) *osm.Client {
	return osm.NewClient(osm.ClientOptions{
		Service:           service,
		UserAgent:         userAgent,
		RequestsPerSecond: sc.RequestsPerSecond,
		Burst:             sc.Burst,
		HTTPClient:        osm.NewHTTPClient(sc.Timeout),
		Hooks:             hooks,
		Logger:            logger,
	})
}

// newProvider builds the configured location source and its cleanup.
func newProvider(lc config.LocationConfig) (survey.LocationProvider, func(), error) {
	switch lc.Source {
	case "replay":
		r, err := location.OpenReplay(lc.ReplayFile)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		if lc.Static == "" {
			return nil, nil, errors.New("no position given: use -origin, -replay or location.static")
		}
		s, err := location.NewStatic(lc.Static, lc.StaticAccuracy)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func newMonitoringServer(addr string, hc *monitoring.HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", hc.HealthHandler())
	mux.HandleFunc("/ready", hc.ReadinessHandler())
	mux.HandleFunc("/live", hc.LivenessHandler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}
}

// startServiceMonitoring starts the Overpass status probe when configured.
func startServiceMonitoring(cfg *config.Config, hc *monitoring.HealthChecker, overpass *osm.OverpassClient, logger *slog.Logger) []*monitoring.ConnectionMonitor {
	var monitors []*monitoring.ConnectionMonitor
	if cfg.Overpass.StatusProbeInterval > 0 {
		m := monitoring.NewConnectionMonitor("overpass", hc, overpass.Status, cfg.Overpass.StatusProbeInterval)
		m.Start()
		monitors = append(monitors, m)
		logger.Info("started external service monitoring",
			"service", "overpass",
			"url", overpass.StatusURL(),
			"check_interval", cfg.Overpass.StatusProbeInterval)
	}
	return monitors
}
