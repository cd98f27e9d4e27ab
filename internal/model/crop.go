package model

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// cropWindow holds the preferred growing conditions for one crop
type cropWindow struct {
	minTemp, maxTemp float64 // celsius
	minRain, maxRain float64 // mm over the horizon
	moisture         float64 // ideal soil moisture percent
}

var cropWindows = map[string]cropWindow{
	"wheat":  {minTemp: 10, maxTemp: 25, minRain: 10, maxRain: 80, moisture: 45},
	"rice":   {minTemp: 20, maxTemp: 35, minRain: 50, maxRain: 300, moisture: 75},
	"maize":  {minTemp: 15, maxTemp: 32, minRain: 20, maxRain: 120, moisture: 55},
	"cotton": {minTemp: 18, maxTemp: 38, minRain: 10, maxRain: 100, moisture: 50},
	"barley": {minTemp: 8, maxTemp: 22, minRain: 10, maxRain: 70, moisture: 40},
}

// CropModel scores crop suitability against the forecast conditions.
// Depends on the weather outlook; soil improves the estimate but a
// missing soil result falls back to the default moisture.
type CropModel struct {
	crops       []string
	initialized bool
}

func NewCropModel(crops []string) *CropModel {
	if len(crops) == 0 {
		crops = []string{"wheat", "rice", "maize", "cotton"}
	}
	return &CropModel{crops: crops}
}

func (m *CropModel) Name() string {
	return "crop-suitability"
}

func (m *CropModel) Kind() models.ModelKind {
	return models.KindCrop
}

func (m *CropModel) Initialize(ctx context.Context) error {
	for _, crop := range m.crops {
		if _, ok := cropWindows[crop]; !ok {
			return fmt.Errorf("%w: no growing window for %q", ErrUnknownCrop, crop)
		}
	}
	m.initialized = true
	return nil
}

func (m *CropModel) Predict(ctx context.Context, input *Input) (*models.ModelResult, error) {
	if !m.initialized {
		return nil, &PredictionError{Model: m.Name(), Reason: "predict before initialize", Err: ErrNotInitialized}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PredictionError{Model: m.Name(), Reason: "context cancelled", Err: err}
	}
	if input == nil || input.Weather == nil {
		return nil, &PredictionError{Model: m.Name(), Reason: "weather outlook unavailable", Err: ErrInsufficientData}
	}

	moisture := DefaultSoilMoisture
	confidence := 0.7
	if input.Soil != nil {
		moisture = input.Soil.Moisture
		confidence = 0.85
	}

	scores := make(map[string]float64, len(m.crops))
	for _, crop := range m.crops {
		w := cropWindows[crop]
		scores[crop] = suitabilityScore(w, input.Weather, moisture)
	}

	var recommended []string
	for crop, score := range scores {
		if score >= 70 {
			recommended = append(recommended, crop)
		}
	}
	sort.Strings(recommended)

	return &models.ModelResult{
		Kind:        models.KindCrop,
		ModelName:   m.Name(),
		Confidence:  clampConfidence(confidence),
		GeneratedAt: time.Now(),
		Data: &models.CropSuitability{
			Scores:      scores,
			Recommended: recommended,
		},
	}, nil
}

func suitabilityScore(w cropWindow, outlook *models.WeatherOutlook, moisture float64) float64 {
	score := 100.0

	// Penalize distance outside the temperature window
	if outlook.AvgTemperature < w.minTemp {
		score -= (w.minTemp - outlook.AvgTemperature) * 4
	} else if outlook.AvgTemperature > w.maxTemp {
		score -= (outlook.AvgTemperature - w.maxTemp) * 4
	}

	// Penalize rainfall outside the window
	if outlook.ExpectedRainfall < w.minRain {
		score -= (w.minRain - outlook.ExpectedRainfall) * 0.5
	} else if outlook.ExpectedRainfall > w.maxRain {
		score -= (outlook.ExpectedRainfall - w.maxRain) * 0.3
	}

	// Penalize moisture distance from the crop's ideal
	distance := moisture - w.moisture
	if distance < 0 {
		distance = -distance
	}
	score -= distance * 0.6

	return clampScore(score)
}
