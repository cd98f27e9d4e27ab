package provider

import (
	"context"
	"time"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/internal/resilience"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// ResilientProvider wraps a provider with retries and a circuit
// breaker so a flapping upstream cannot stall every analysis.
type ResilientProvider struct {
	provider       WeatherProvider
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientProviderConfig struct {
	Provider      WeatherProvider
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientProvider(cfg ResilientProviderConfig) *ResilientProvider {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "weather-provider",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientProvider{
		provider:       cfg.Provider,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (p *ResilientProvider) FetchCurrent(ctx context.Context, locationID string) (*models.Observation, error) {
	var obs *models.Observation
	err := p.withRetries(ctx, locationID, func() error {
		var err error
		obs, err = p.provider.FetchCurrent(ctx, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return obs, nil
}

func (p *ResilientProvider) FetchHistory(ctx context.Context, locationID string, days int) ([]models.Observation, error) {
	var history []models.Observation
	err := p.withRetries(ctx, locationID, func() error {
		var err error
		history, err = p.provider.FetchHistory(ctx, locationID, days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (p *ResilientProvider) withRetries(ctx context.Context, locationID string, fn func() error) error {
	var lastErr error

	return p.circuitBreaker.Execute(func() error {
		for attempt := 1; attempt <= p.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			err := fn()
			if err == nil {
				return nil
			}

			lastErr = err
			logger.WithLocation(locationID).Warnf(
				"Fetch attempt %d/%d failed: %v",
				attempt, p.retryAttempts, err,
			)

			if attempt < p.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(p.retryDelay):
				}
			}
		}
		return lastErr
	})
}

func (p *ResilientProvider) HealthCheck(ctx context.Context) error {
	return p.provider.HealthCheck(ctx)
}

func (p *ResilientProvider) Close() error {
	return p.provider.Close()
}

func (p *ResilientProvider) CircuitState() resilience.State {
	return p.circuitBreaker.State()
}

func (p *ResilientProvider) ResetCircuit() {
	p.circuitBreaker.Reset()
}
