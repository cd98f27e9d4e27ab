package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// HTTPProvider fetches observations from an external weather service
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

type HTTPProviderConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewHTTPProvider(cfg HTTPProviderConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
		timeout:  timeout,
	}
}

// observationResponse matches the provider service wire format
type observationResponse struct {
	LocationID   string  `json:"location_id"`
	Timestamp    string  `json:"timestamp"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Rainfall     float64 `json:"rainfall"`
	WindSpeed    float64 `json:"wind_speed"`
	SoilMoisture float64 `json:"soil_moisture"`
	Pressure     float64 `json:"pressure"`
}

func (p *HTTPProvider) FetchCurrent(ctx context.Context, locationID string) (*models.Observation, error) {
	url := fmt.Sprintf("%s/%s/current", p.endpoint, locationID)

	body, err := p.get(ctx, locationID, url)
	if err != nil {
		return nil, err
	}

	var resp observationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	obs := resp.toObservation(locationID)
	return &obs, nil
}

func (p *HTTPProvider) FetchHistory(ctx context.Context, locationID string, days int) ([]models.Observation, error) {
	if days <= 0 {
		days = 7
	}
	url := fmt.Sprintf("%s/%s/history?days=%d", p.endpoint, locationID, days)

	body, err := p.get(ctx, locationID, url)
	if err != nil {
		return nil, err
	}

	var resp []observationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	history := make([]models.Observation, 0, len(resp))
	for _, r := range resp {
		history = append(history, r.toObservation(locationID))
	}
	return history, nil
}

func (p *HTTPProvider) get(ctx context.Context, locationID, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	logger.WithLocation(locationID).Debugf("Fetching observations from %s", url)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrLocationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrFetchFailed, err)
	}
	return body, nil
}

func (r observationResponse) toObservation(locationID string) models.Observation {
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	if r.LocationID == "" {
		r.LocationID = locationID
	}
	return models.Observation{
		LocationID:   r.LocationID,
		Timestamp:    ts,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		Rainfall:     r.Rainfall,
		WindSpeed:    r.WindSpeed,
		SoilMoisture: r.SoilMoisture,
		Pressure:     r.Pressure,
	}
}

func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health endpoint returned %d", ErrFetchFailed, resp.StatusCode)
	}
	return nil
}

func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
