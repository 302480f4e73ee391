package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"librarybookings/internal/availability"
	"librarybookings/internal/config"
	"librarybookings/internal/events"
	"librarybookings/internal/logging"
	"librarybookings/internal/metrics"
	"librarybookings/internal/snapshot"
	"librarybookings/internal/validation"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to load .env")
	}

	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid arguments")
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = logger.Level(logging.ParseLevel(cfg.Monitoring.LogLevel))

	if flags.snapshotPath != "" {
		cfg.Snapshot.Path = flags.snapshotPath
	}
	if flags.reportPath != "" {
		cfg.Report.Path = flags.reportPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Monitoring.PrometheusEnabled {
		m.Register(nil)
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	log := logging.NewZerolog(&logger)
	engine := availability.NewEngine(cfg.EngineConfig(), log, m)
	runner := &app{
		cfg:       cfg,
		flags:     flags,
		engine:    engine,
		validator: validation.NewValidator(engine, log, m),
		out:       os.Stdout,
		logger:    &logger,
	}

	if !flags.watch {
		snap, err := snapshot.Load(cfg.Snapshot.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load snapshot")
		}
		if err := runner.run(snap); err != nil {
			logger.Fatal().Err(err).Msg("availability run failed")
		}
		return
	}

	bus := events.NewBus(log)
	runner.subscribe(bus, m)

	initial := true
	err = snapshot.Watch(ctx, cfg.Snapshot.Path, cfg.WatchInterval(),
		func(snap *snapshot.Snapshot) {
			bus.Publish(events.Event{Type: events.SnapshotLoaded, Snapshot: snap, Initial: initial})
			initial = false
		},
		func(err error) {
			bus.Publish(events.Event{Type: events.SnapshotFailed, Err: err})
		},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to watch snapshot")
	}

	logger.Info().Str("snapshot", cfg.Snapshot.Path).Dur("interval", cfg.WatchInterval()).Msg("watching snapshot")
	<-ctx.Done()
	logger.Info().Msg("stopped")
}

// loadConfig reads the config file. Without an explicit path a missing
// default file yields the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("LIBRARYBOOKINGS_CONFIG")
		explicit = path != ""
	}
	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return config.Parse([]byte("{}"))
	}
	return cfg, err
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
