package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/model"
	"github.com/OldStager01/agro-advisor/internal/orchestrator"
	"github.com/OldStager01/agro-advisor/internal/tracker"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

type stubModel struct {
	kind    models.ModelKind
	initErr error
	predict func(ctx context.Context, input *model.Input) (*models.ModelResult, error)
}

func (s *stubModel) Name() string                         { return string(s.kind) + "-stub" }
func (s *stubModel) Kind() models.ModelKind               { return s.kind }
func (s *stubModel) Initialize(ctx context.Context) error { return s.initErr }

func (s *stubModel) Predict(ctx context.Context, input *model.Input) (*models.ModelResult, error) {
	if s.predict != nil {
		return s.predict(ctx, input)
	}
	return &models.ModelResult{
		Kind:        s.kind,
		ModelName:   s.Name(),
		Confidence:  0.9,
		GeneratedAt: time.Now(),
	}, nil
}

type stubProvider struct {
	current    *models.Observation
	currentErr error
	history    []models.Observation
}

func (p *stubProvider) FetchCurrent(ctx context.Context, locationID string) (*models.Observation, error) {
	return p.current, p.currentErr
}

func (p *stubProvider) FetchHistory(ctx context.Context, locationID string, days int) ([]models.Observation, error) {
	return p.history, nil
}

func (p *stubProvider) HealthCheck(ctx context.Context) error { return nil }
func (p *stubProvider) Close() error                          { return nil }

type recordingGateway struct {
	mu     sync.Mutex
	stored []*models.Advisory
	err    error
}

func (g *recordingGateway) StoreAdvisory(ctx context.Context, advisory *models.Advisory) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stored = append(g.stored, advisory)
	return g.err
}

func registryOf(stubs ...*stubModel) *model.Registry {
	r := model.NewRegistry()
	for _, s := range stubs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

func fullStubRegistry() *model.Registry {
	stubs := make([]*stubModel, 0, len(models.AllKinds()))
	for _, k := range models.AllKinds() {
		stubs = append(stubs, &stubModel{kind: k})
	}
	return registryOf(stubs...)
}

func calmProvider() *stubProvider {
	return &stubProvider{
		current: &models.Observation{
			LocationID:  "delhi",
			Timestamp:   time.Now(),
			Temperature: 22,
			Humidity:    55,
		},
	}
}

func TestRunAnalysis_RequiresInitialization(t *testing.T) {
	orch := orchestrator.New(orchestrator.Config{
		Registry: fullStubRegistry(),
		Tracker:  tracker.New(),
		Provider: calmProvider(),
	})

	_, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	assert.ErrorIs(t, err, orchestrator.ErrNotInitialized)
}

func TestRunAnalysis_RejectsMissingLocation(t *testing.T) {
	orch := orchestrator.New(orchestrator.Config{
		Registry: fullStubRegistry(),
		Tracker:  tracker.New(),
		Provider: calmProvider(),
	})
	require.NoError(t, orch.Initialize(context.Background()))

	_, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{})
	assert.ErrorIs(t, err, orchestrator.ErrInvalidRequest)

	_, err = orch.RunAnalysis(context.Background(), nil)
	assert.ErrorIs(t, err, orchestrator.ErrInvalidRequest)
}

func TestInitialize_ModelFailureIsFatal(t *testing.T) {
	broken := &stubModel{kind: models.KindWeather, initErr: errors.New("weights missing")}
	orch := orchestrator.New(orchestrator.Config{
		Registry: registryOf(broken),
		Tracker:  tracker.New(),
		Provider: calmProvider(),
	})

	err := orch.Initialize(context.Background())
	require.Error(t, err)

	// Still unusable after a failed init
	_, err = orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	assert.ErrorIs(t, err, orchestrator.ErrNotInitialized)
}

func TestRunAnalysis_AllModelsFailStillProducesAdvisory(t *testing.T) {
	stubs := make([]*stubModel, 0, len(models.AllKinds()))
	for _, k := range models.AllKinds() {
		stubs = append(stubs, &stubModel{
			kind: k,
			predict: func(ctx context.Context, input *model.Input) (*models.ModelResult, error) {
				return nil, errors.New("model unavailable")
			},
		})
	}

	perfTracker := tracker.New()
	orch := orchestrator.New(orchestrator.Config{
		Registry: registryOf(stubs...),
		Tracker:  perfTracker,
		Provider: calmProvider(),
	})
	require.NoError(t, orch.Initialize(context.Background()))

	advisory, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	require.NoError(t, err)
	require.NotNil(t, advisory)

	assert.True(t, advisory.Degraded)
	assert.Len(t, advisory.Results, len(models.AllKinds()))
	for _, r := range advisory.Results {
		assert.True(t, r.Placeholder)
		assert.Nil(t, r.Data)
	}
	// Fully degraded advisories keep a tentative confidence floor
	assert.GreaterOrEqual(t, advisory.OverallConfidence, 0.3)

	// Each model was invoked exactly once and counted as a failure
	for _, s := range stubs {
		snap, ok := perfTracker.Snapshot(s.Name())
		require.True(t, ok, s.Name())
		assert.Equal(t, uint64(1), snap.TotalCalls)
		assert.Equal(t, uint64(0), snap.SuccessfulCalls)
	}
}

func TestRunAnalysis_PhaseTwoSeesPhaseOneOutputs(t *testing.T) {
	outlook := &models.WeatherOutlook{LocationID: "delhi", HorizonDays: 7, ExpectedRainfall: 14}
	soil := &models.SoilAssessment{HealthScore: 65, Moisture: 42}

	var mu sync.Mutex
	seen := make(map[models.ModelKind]*model.Input)

	weather := &stubModel{kind: models.KindWeather, predict: func(ctx context.Context, input *model.Input) (*models.ModelResult, error) {
		return &models.ModelResult{Kind: models.KindWeather, ModelName: "weather-stub", Confidence: 0.9, GeneratedAt: time.Now(), Data: outlook}, nil
	}}
	soilModel := &stubModel{kind: models.KindSoil, predict: func(ctx context.Context, input *model.Input) (*models.ModelResult, error) {
		return &models.ModelResult{Kind: models.KindSoil, ModelName: "soil-stub", Confidence: 0.85, GeneratedAt: time.Now(), Data: soil}, nil
	}}

	phaseTwoStub := func(kind models.ModelKind) *stubModel {
		return &stubModel{kind: kind, predict: func(ctx context.Context, input *model.Input) (*models.ModelResult, error) {
			mu.Lock()
			snapshot := *input
			seen[kind] = &snapshot
			mu.Unlock()
			return &models.ModelResult{Kind: kind, ModelName: string(kind) + "-stub", Confidence: 0.8, GeneratedAt: time.Now()}, nil
		}}
	}

	orch := orchestrator.New(orchestrator.Config{
		Registry: registryOf(weather, soilModel,
			phaseTwoStub(models.KindCrop),
			phaseTwoStub(models.KindIrrigation),
			phaseTwoStub(models.KindEnergy),
			phaseTwoStub(models.KindRisk)),
		Tracker:  tracker.New(),
		Provider: calmProvider(),
	})
	require.NoError(t, orch.Initialize(context.Background()))

	_, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	require.NoError(t, err)

	require.Len(t, seen, 4)
	for kind, input := range seen {
		assert.Same(t, outlook, input.Weather, kind)
		assert.Same(t, soil, input.Soil, kind)
	}
}

func TestRunAnalysis_ScopeLimitsModelSet(t *testing.T) {
	perfTracker := tracker.New()
	orch := orchestrator.New(orchestrator.Config{
		Registry: fullStubRegistry(),
		Tracker:  perfTracker,
		Provider: calmProvider(),
	})
	require.NoError(t, orch.Initialize(context.Background()))

	advisory, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{
		LocationID: "delhi",
		Scope:      []models.ModelKind{models.KindWeather, models.KindSoil},
	})
	require.NoError(t, err)

	assert.Len(t, advisory.Results, 2)
	_, ok := perfTracker.Snapshot("crop-stub")
	assert.False(t, ok)
}

func TestRunAnalysis_MissingObservationDegradesAdvisory(t *testing.T) {
	orch := orchestrator.New(orchestrator.Config{
		Registry: fullStubRegistry(),
		Tracker:  tracker.New(),
		Provider: &stubProvider{currentErr: errors.New("station offline")},
	})
	require.NoError(t, orch.Initialize(context.Background()))

	advisory, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	require.NoError(t, err)
	assert.True(t, advisory.Degraded)
}

func TestRunAnalysis_PersistsThroughGateway(t *testing.T) {
	gateway := &recordingGateway{}
	orch := orchestrator.New(orchestrator.Config{
		Registry: fullStubRegistry(),
		Tracker:  tracker.New(),
		Provider: calmProvider(),
		Gateway:  gateway,
	})
	require.NoError(t, orch.Initialize(context.Background()))

	advisory, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	require.NoError(t, err)

	require.Len(t, gateway.stored, 1)
	assert.Equal(t, advisory.ID, gateway.stored[0].ID)
}

func TestRunAnalysis_GatewayFailureDoesNotFailAnalysis(t *testing.T) {
	gateway := &recordingGateway{err: errors.New("db down")}
	orch := orchestrator.New(orchestrator.Config{
		Registry: fullStubRegistry(),
		Tracker:  tracker.New(),
		Provider: calmProvider(),
		Gateway:  gateway,
	})
	require.NoError(t, orch.Initialize(context.Background()))

	_, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{LocationID: "delhi"})
	assert.NoError(t, err)
}

func TestRunAnalysis_SlowModelGetsPlaceholder(t *testing.T) {
	slow := &stubModel{kind: models.KindWeather, predict: func(ctx context.Context, input *model.Input) (*models.ModelResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	orch := orchestrator.New(orchestrator.Config{
		Registry:       registryOf(slow),
		Tracker:        tracker.New(),
		Provider:       calmProvider(),
		PredictTimeout: 10 * time.Millisecond,
	})
	require.NoError(t, orch.Initialize(context.Background()))

	advisory, err := orch.RunAnalysis(context.Background(), &models.AnalysisRequest{
		LocationID: "delhi",
		Scope:      []models.ModelKind{models.KindWeather},
	})
	require.NoError(t, err)
	require.Len(t, advisory.Results, 1)
	assert.True(t, advisory.Results[0].Placeholder)
}
