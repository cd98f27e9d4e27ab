package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OldStager01/agro-advisor/api"
	"github.com/OldStager01/agro-advisor/internal/aggregate"
	"github.com/OldStager01/agro-advisor/internal/alerting"
	"github.com/OldStager01/agro-advisor/internal/events"
	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/internal/metrics"
	"github.com/OldStager01/agro-advisor/internal/model"
	"github.com/OldStager01/agro-advisor/internal/orchestrator"
	"github.com/OldStager01/agro-advisor/internal/provider"
	"github.com/OldStager01/agro-advisor/internal/resilience"
	"github.com/OldStager01/agro-advisor/internal/scheduler"
	"github.com/OldStager01/agro-advisor/internal/tracker"
	"github.com/OldStager01/agro-advisor/pkg/config"
	"github.com/OldStager01/agro-advisor/pkg/database"
	"github.com/OldStager01/agro-advisor/pkg/database/queries"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if version, err := db.GetVersion(context.Background()); err == nil {
		logger.Infof("Database connection established: %s", version)
	} else {
		logger.Info("Database connection established")
	}

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	m := metrics.Get()
	if cfg.Prometheus.Enabled {
		metrics.StartServer(cfg.Prometheus.Port)
	}

	weatherProvider := buildProvider(cfg, m)
	defer weatherProvider.Close()

	eventBus := events.NewEventBus(cfg.Events.BufferSize)
	defer eventBus.Close()
	publisher := events.NewPublisher(eventBus)

	ladder := buildLadder(cfg)
	alertTTL, err := cfg.Alerts.TTLDurations()
	if err != nil {
		logger.Warnf("Invalid alert TTL config, using defaults: %v", err)
		alertTTL = nil
	}
	alertStore := alerting.NewStore(alerting.StoreConfig{TTL: alertTTL})
	evaluator := alerting.NewEvaluator(ladder, alertStore, publisher).WithMetrics(m)

	advisoryRepo := queries.NewAdvisoryRepository(db)
	alertRepo := queries.NewAlertRepository(db)

	eventLogger := events.NewEventLogger(alertRepo, eventBus.SubscribeAll())
	eventLogger.Start()
	defer eventLogger.Stop()

	perfTracker := tracker.New()

	orch := orchestrator.New(orchestrator.Config{
		Registry:       model.DefaultRegistry(cfg.Models.Crops),
		Tracker:        perfTracker,
		Provider:       weatherProvider,
		Gateway:        &advisoryGateway{repo: advisoryRepo},
		Publisher:      publisher,
		Aggregator:     aggregate.New(),
		Evaluator:      evaluator,
		Metrics:        m,
		PredictTimeout: cfg.Models.PredictTimeout,
		HistoryDays:    cfg.Models.HistoryDays,
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	initCtx, initCancel := context.WithTimeout(rootCtx, 30*time.Second)
	if err := orch.Initialize(initCtx); err != nil {
		initCancel()
		return fmt.Errorf("failed to initialize models: %w", err)
	}
	initCancel()

	go evaluator.RunSweeps(rootCtx, cfg.Alerts.SweepInterval)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(scheduler.Config{
			Interval:       cfg.Scheduler.Interval,
			ColdStartDelay: cfg.Scheduler.ColdStartDelay,
			ItemDelay:      cfg.Scheduler.ItemDelay,
			Locations:      cfg.Scheduler.Locations,
			HorizonDays:    cfg.Scheduler.HorizonDays,
			Runner:         orch,
			Metrics:        m,
		})
		sched.Start()
		defer sched.Stop()
	}

	server := api.NewServer(cfg.API, cfg.WebSocket, api.Deps{
		DB:         db,
		Analyzer:   orch,
		AlertStore: alertStore,
		Tracker:    perfTracker,
		Scheduler:  sched,
		Provider:   weatherProvider,
		Events:     eventBus.SubscribeAll(),
		Metrics:    m,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// buildProvider wires the configured provider behind retries and a
// circuit breaker whose state feeds the Prometheus gauge.
func buildProvider(cfg *config.Config, m *metrics.Metrics) provider.WeatherProvider {
	var base provider.WeatherProvider
	switch cfg.Provider.Type {
	case "http":
		base = provider.NewHTTPProvider(provider.HTTPProviderConfig{
			Endpoint: cfg.Provider.Endpoint,
			Timeout:  cfg.Provider.Timeout,
		})
	default:
		base = provider.NewMockProvider(provider.MockProviderConfig{})
	}

	return provider.NewResilientProvider(provider.ResilientProviderConfig{
		Provider:      base,
		MaxFailures:   cfg.Provider.CircuitBreaker.MaxFailures,
		Timeout:       cfg.Provider.CircuitBreaker.Timeout,
		RetryAttempts: cfg.Provider.RetryAttempts,
		RetryDelay:    cfg.Provider.RetryDelay,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Infof("Circuit breaker %s: %s -> %s", name, from, to)
			m.ProviderCircuit.Set(float64(to))
		},
	})
}

// buildLadder prefers configured thresholds and falls back to the
// built-in ladder when the config is absent or invalid.
func buildLadder(cfg *config.Config) *alerting.Ladder {
	levels, err := cfg.Alerts.ThresholdLevels()
	if err != nil {
		logger.Warnf("Invalid threshold config, using built-in ladder: %v", err)
		return alerting.DefaultLadder()
	}
	if len(levels) == 0 {
		return alerting.DefaultLadder()
	}

	ladder, err := alerting.NewLadder(levels)
	if err != nil {
		logger.Warnf("Threshold config rejected, using built-in ladder: %v", err)
		return alerting.DefaultLadder()
	}
	return ladder
}

// advisoryGateway adapts the repository to the orchestrator's
// persistence interface.
type advisoryGateway struct {
	repo *queries.AdvisoryRepository
}

func (g *advisoryGateway) StoreAdvisory(ctx context.Context, advisory *models.Advisory) error {
	return g.repo.Insert(ctx, advisory)
}
