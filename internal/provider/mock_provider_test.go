package provider_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/provider"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func TestMockProvider_SynthesizesPlausibleObservations(t *testing.T) {
	p := provider.NewMockProvider(provider.MockProviderConfig{Seed: 42})
	defer p.Close()

	obs, err := p.FetchCurrent(context.Background(), "delhi")
	require.NoError(t, err)

	assert.Equal(t, "delhi", obs.LocationID)
	assert.InDelta(t, 24.0, obs.Temperature, 15)
	assert.GreaterOrEqual(t, obs.Humidity, 0.0)
	assert.LessOrEqual(t, obs.Humidity, 100.0)
	assert.GreaterOrEqual(t, obs.Rainfall, 0.0)
}

func TestMockProvider_HistoryOldestFirst(t *testing.T) {
	p := provider.NewMockProvider(provider.MockProviderConfig{Seed: 42})

	history, err := p.FetchHistory(context.Background(), "delhi", 2)
	require.NoError(t, err)
	require.Len(t, history, 12) // six samples per day

	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
}

func TestMockProvider_OverridePinsObservation(t *testing.T) {
	p := provider.NewMockProvider(provider.MockProviderConfig{Seed: 42})

	pinned := models.Observation{
		LocationID: "delhi",
		Rainfall:   22.5,
	}
	p.SetObservation(pinned)

	obs, err := p.FetchCurrent(context.Background(), "delhi")
	require.NoError(t, err)
	assert.Equal(t, 22.5, obs.Rainfall)

	// Other locations still synthesize
	other, err := p.FetchCurrent(context.Background(), "mumbai")
	require.NoError(t, err)
	assert.Equal(t, "mumbai", other.LocationID)
}

func TestMockProvider_InjectedFailure(t *testing.T) {
	p := provider.NewMockProvider(provider.MockProviderConfig{Seed: 42})
	p.SetShouldFail(true, nil)

	_, err := p.FetchCurrent(context.Background(), "delhi")
	assert.ErrorIs(t, err, provider.ErrFetchFailed)
	assert.Error(t, p.HealthCheck(context.Background()))

	p.SetShouldFail(false, nil)
	_, err = p.FetchCurrent(context.Background(), "delhi")
	assert.NoError(t, err)
	assert.NoError(t, p.HealthCheck(context.Background()))
}

func TestMockProvider_ConcurrentFetches(t *testing.T) {
	p := provider.NewMockProvider(provider.MockProviderConfig{Seed: 42})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := p.FetchCurrent(ctx, "delhi"); err != nil {
					errs <- err
					return
				}
				if _, err := p.FetchHistory(ctx, "mumbai", 1); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestMockProvider_RespectsContextCancellation(t *testing.T) {
	p := provider.NewMockProvider(provider.MockProviderConfig{Seed: 42})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchCurrent(ctx, "delhi")
	assert.ErrorIs(t, err, context.Canceled)
}
