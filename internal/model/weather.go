package model

import (
	"context"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// WeatherModel produces a short-range outlook from recent
// observations: a linear temperature trend plus rainfall persistence.
type WeatherModel struct {
	initialized bool
}

func NewWeatherModel() *WeatherModel {
	return &WeatherModel{}
}

func (m *WeatherModel) Name() string {
	return "weather-trend"
}

func (m *WeatherModel) Kind() models.ModelKind {
	return models.KindWeather
}

func (m *WeatherModel) Initialize(ctx context.Context) error {
	m.initialized = true
	return nil
}

func (m *WeatherModel) Predict(ctx context.Context, input *Input) (*models.ModelResult, error) {
	if !m.initialized {
		return nil, &PredictionError{Model: m.Name(), Reason: "predict before initialize", Err: ErrNotInitialized}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PredictionError{Model: m.Name(), Reason: "context cancelled", Err: err}
	}
	if input == nil || input.Request == nil {
		return nil, invalidInput(m.Name(), "missing request")
	}
	if len(input.History) < 2 {
		return nil, &PredictionError{Model: m.Name(), Reason: "need at least 2 observations", Err: ErrInsufficientData}
	}

	horizon := input.Request.HorizonDays
	if horizon <= 0 {
		horizon = 7
	}

	var tempSum, rainSum, humSum float64
	minTemp := input.History[0].Temperature
	maxTemp := input.History[0].Temperature
	for _, obs := range input.History {
		tempSum += obs.Temperature
		rainSum += obs.Rainfall
		humSum += obs.Humidity
		if obs.Temperature < minTemp {
			minTemp = obs.Temperature
		}
		if obs.Temperature > maxTemp {
			maxTemp = obs.Temperature
		}
	}
	n := float64(len(input.History))
	avgTemp := tempSum / n

	// Trend from the first/second half difference, projected one step
	half := len(input.History) / 2
	firstAvg := averageTemp(input.History[:half])
	secondAvg := averageTemp(input.History[half:])
	trend := secondAvg - firstAvg

	dailyRain := rainSum / n * 24 // mm/h samples to mm/day
	daily := make([]float64, horizon)
	for i := range daily {
		daily[i] = dailyRain
	}

	outlook := &models.WeatherOutlook{
		LocationID:       input.Request.LocationID,
		HorizonDays:      horizon,
		AvgTemperature:   avgTemp + trend,
		MaxTemperature:   maxTemp + trend,
		MinTemperature:   minTemp + trend,
		ExpectedRainfall: dailyRain * float64(horizon),
		AvgHumidity:      humSum / n,
		DailyRainfall:    daily,
	}

	// More history means more signal; saturate at 30 samples
	confidence := clampConfidence(0.5 + n/60.0)

	return &models.ModelResult{
		Kind:        models.KindWeather,
		ModelName:   m.Name(),
		Confidence:  confidence,
		GeneratedAt: time.Now(),
		Data:        outlook,
		Metadata: map[string]interface{}{
			"samples": len(input.History),
			"trend":   trend,
		},
	}, nil
}

func averageTemp(obs []models.Observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	var total float64
	for _, o := range obs {
		total += o.Temperature
	}
	return total / float64(len(obs))
}
