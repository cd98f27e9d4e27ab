package provider

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// MockProvider synthesizes plausible observations with a diurnal
// temperature cycle and occasional rain bursts. Deterministic per
// seed, so tests can assert on generated values. Safe for concurrent
// use: the rand source and overrides are guarded by a single mutex.
type MockProvider struct {
	mu           sync.Mutex
	baseTemp     float64
	baseHumidity float64
	variance     float64
	rng          *rand.Rand
	shouldFail   bool
	failureError error
	overrides    map[string]models.Observation
}

type MockProviderConfig struct {
	BaseTemp     float64
	BaseHumidity float64
	Variance     float64
	Seed         int64
}

func NewMockProvider(cfg MockProviderConfig) *MockProvider {
	baseTemp := cfg.BaseTemp
	if baseTemp == 0 {
		baseTemp = 24.0
	}
	baseHumidity := cfg.BaseHumidity
	if baseHumidity == 0 {
		baseHumidity = 55.0
	}
	variance := cfg.Variance
	if variance == 0 {
		variance = 3.0
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &MockProvider{
		baseTemp:     baseTemp,
		baseHumidity: baseHumidity,
		variance:     variance,
		rng:          rand.New(rand.NewSource(seed)),
		overrides:    make(map[string]models.Observation),
	}
}

// SetObservation pins the current observation for a location,
// bypassing synthesis. Used by tests to drive specific conditions.
func (p *MockProvider) SetObservation(obs models.Observation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides[obs.LocationID] = obs
}

func (p *MockProvider) SetShouldFail(shouldFail bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shouldFail = shouldFail
	p.failureError = err
}

func (p *MockProvider) FetchCurrent(ctx context.Context, locationID string) (*models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shouldFail {
		return nil, p.failErr()
	}

	if obs, ok := p.overrides[locationID]; ok {
		return &obs, nil
	}

	obs := p.synthesize(locationID, time.Now())
	return &obs, nil
}

func (p *MockProvider) FetchHistory(ctx context.Context, locationID string, days int) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shouldFail {
		return nil, p.failErr()
	}
	if days <= 0 {
		days = 7
	}

	// Six samples per day, oldest first
	samples := days * 6
	now := time.Now()
	history := make([]models.Observation, 0, samples)
	for i := samples - 1; i >= 0; i-- {
		ts := now.Add(-time.Duration(i) * 4 * time.Hour)
		history = append(history, p.synthesize(locationID, ts))
	}
	return history, nil
}

func (p *MockProvider) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shouldFail {
		return p.failErr()
	}
	return nil
}

func (p *MockProvider) Close() error {
	return nil
}

func (p *MockProvider) failErr() error {
	if p.failureError != nil {
		return p.failureError
	}
	return ErrFetchFailed
}

// synthesize builds one observation: temperature peaks mid-afternoon,
// humidity moves inversely, and roughly one sample in eight is wet.
// Caller holds p.mu for the rand source.
func (p *MockProvider) synthesize(locationID string, ts time.Time) models.Observation {
	hour := float64(ts.Hour())
	diurnal := math.Sin((hour - 9) / 24 * 2 * math.Pi)

	temp := p.baseTemp + diurnal*6 + (p.rng.Float64()-0.5)*p.variance
	humidity := clampPct(p.baseHumidity - diurnal*15 + (p.rng.Float64()-0.5)*p.variance*2)

	rainfall := 0.0
	if p.rng.Float64() < 0.125 {
		rainfall = p.rng.Float64() * 8
	}

	return models.Observation{
		LocationID:   locationID,
		Timestamp:    ts,
		Temperature:  temp,
		Humidity:     humidity,
		Rainfall:     rainfall,
		WindSpeed:    5 + p.rng.Float64()*20,
		SoilMoisture: clampPct(40 + rainfall*3 + (p.rng.Float64()-0.5)*10),
		Pressure:     1013 + (p.rng.Float64()-0.5)*10,
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
