package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OldStager01/agro-advisor/internal/aggregate"
	"github.com/OldStager01/agro-advisor/internal/alerting"
	"github.com/OldStager01/agro-advisor/internal/events"
	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/internal/metrics"
	"github.com/OldStager01/agro-advisor/internal/model"
	"github.com/OldStager01/agro-advisor/internal/provider"
	"github.com/OldStager01/agro-advisor/internal/tracker"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

var (
	ErrNotInitialized = errors.New("orchestrator not initialized")
	ErrInvalidRequest = errors.New("invalid analysis request")
)

// Confidence assigned to placeholder results for failed models, and
// the floor applied to the advisory when every model failed.
const (
	placeholderConfidence    = 0.1
	allFailedConfidenceFloor = 0.3
)

// PersistenceGateway stores completed advisories. Failures are logged
// and never fail the analysis.
type PersistenceGateway interface {
	StoreAdvisory(ctx context.Context, advisory *models.Advisory) error
}

type Config struct {
	Registry       *model.Registry
	Tracker        *tracker.Tracker
	Provider       provider.WeatherProvider
	Gateway        PersistenceGateway
	Publisher      *events.Publisher
	Aggregator     *aggregate.Aggregator
	Evaluator      *alerting.Evaluator
	Metrics        *metrics.Metrics
	PredictTimeout time.Duration
	HistoryDays    int
}

// Orchestrator runs the two-phase prediction fan-out for one location
// at a time and assembles the results into an advisory. Safe for
// concurrent RunAnalysis calls.
type Orchestrator struct {
	registry       *model.Registry
	tracker        *tracker.Tracker
	provider       provider.WeatherProvider
	gateway        PersistenceGateway
	publisher      *events.Publisher
	aggregator     *aggregate.Aggregator
	evaluator      *alerting.Evaluator
	metrics        *metrics.Metrics
	predictTimeout time.Duration
	historyDays    int

	initialized bool
	mu          sync.RWMutex
}

func New(cfg Config) *Orchestrator {
	if cfg.PredictTimeout <= 0 {
		cfg.PredictTimeout = 5 * time.Second
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 7
	}
	if cfg.Aggregator == nil {
		cfg.Aggregator = aggregate.New()
	}

	return &Orchestrator{
		registry:       cfg.Registry,
		tracker:        cfg.Tracker,
		provider:       cfg.Provider,
		gateway:        cfg.Gateway,
		publisher:      cfg.Publisher,
		aggregator:     cfg.Aggregator,
		evaluator:      cfg.Evaluator,
		metrics:        cfg.Metrics,
		predictTimeout: cfg.PredictTimeout,
		historyDays:    cfg.HistoryDays,
	}
}

// Initialize prepares every registered model. Any model failing to
// initialize is fatal; the orchestrator stays unusable.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}
	if err := o.registry.InitializeAll(ctx); err != nil {
		return err
	}
	o.initialized = true
	logger.Info("Orchestrator initialized")
	return nil
}

func (o *Orchestrator) isInitialized() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.initialized
}

// RunAnalysis executes the full pipeline for one location: fetch
// observations, run both model phases, aggregate, evaluate alerts,
// and persist. Individual model failures degrade the advisory rather
// than failing the run.
func (o *Orchestrator) RunAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.Advisory, error) {
	if !o.isInitialized() {
		return nil, ErrNotInitialized
	}
	if req == nil || req.LocationID == "" {
		return nil, fmt.Errorf("%w: missing location id", ErrInvalidRequest)
	}
	if req.HorizonDays <= 0 {
		req.HorizonDays = 7
	}

	started := time.Now()
	log := logger.WithLocation(req.LocationID)
	log.Info("Analysis started")

	current, history := o.fetchObservations(ctx, req.LocationID)

	input := &model.Input{
		Request: req,
		Current: current,
		History: history,
	}

	results := o.runPhases(ctx, input)

	advisory := o.aggregator.Build(req.LocationID, results)
	if current == nil {
		advisory.Degraded = true
	}
	o.applyConfidenceFloor(advisory, results)

	if o.metrics != nil {
		o.metrics.ObserveAnalysis(time.Since(started), advisory.Degraded, false)
	}
	if o.publisher != nil {
		o.publisher.AdvisoryGenerated(advisory)
	}
	o.persist(ctx, advisory)

	if o.evaluator != nil && current != nil {
		o.evaluator.Evaluate(current)
	}

	log.WithField("degraded", advisory.Degraded).Infof(
		"Analysis complete: score=%d confidence=%.2f", advisory.OverallScore, advisory.OverallConfidence)
	return advisory, nil
}

// fetchObservations pulls the current observation and recent history.
// Either may be missing; models fall back on documented defaults and
// the advisory is marked degraded.
func (o *Orchestrator) fetchObservations(ctx context.Context, locationID string) (*models.Observation, []models.Observation) {
	current, err := o.provider.FetchCurrent(ctx, locationID)
	if err != nil {
		logger.WithLocation(locationID).Warnf("Failed to fetch current observation: %v", err)
		if o.publisher != nil {
			o.publisher.Error(locationID, "Observation fetch failed", err)
		}
	}

	history, err := o.provider.FetchHistory(ctx, locationID, o.historyDays)
	if err != nil {
		logger.WithLocation(locationID).Warnf("Failed to fetch observation history: %v", err)
		history = nil
	}
	return current, history
}

// applyConfidenceFloor raises the overall confidence when every model
// returned a placeholder, so a fully degraded advisory still reads as
// a tentative default rather than a near-zero signal.
func (o *Orchestrator) applyConfidenceFloor(advisory *models.Advisory, results aggregate.ResultSet) {
	for _, r := range results {
		if !r.Placeholder {
			return
		}
	}
	if advisory.OverallConfidence < allFailedConfidenceFloor {
		advisory.OverallConfidence = allFailedConfidenceFloor
	}
}

func (o *Orchestrator) persist(ctx context.Context, advisory *models.Advisory) {
	if o.gateway == nil {
		return
	}
	if err := o.gateway.StoreAdvisory(ctx, advisory); err != nil {
		logger.WithLocation(advisory.LocationID).Errorf("Failed to store advisory: %v", err)
	}
}
