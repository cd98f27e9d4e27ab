package provider

import (
	"context"
	"errors"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

var (
	ErrFetchFailed      = errors.New("observation fetch failed")
	ErrTimeout          = errors.New("provider timeout")
	ErrLocationNotFound = errors.New("location not found")
	ErrInvalidResponse  = errors.New("invalid response from provider")
)

// WeatherProvider supplies observations for a location. The core
// never assumes a provider identity; implementations may be mock,
// government, or commercial feeds.
type WeatherProvider interface {
	// FetchCurrent returns the latest observation for a location
	FetchCurrent(ctx context.Context, locationID string) (*models.Observation, error)

	// FetchHistory returns observations covering the last N days,
	// oldest first
	FetchHistory(ctx context.Context, locationID string, days int) ([]models.Observation, error)

	// HealthCheck verifies the provider can reach its data source
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the provider
	Close() error
}
