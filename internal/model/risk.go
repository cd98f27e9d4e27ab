package model

import (
	"context"
	"fmt"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// RiskModel scores hazard exposure from the current observation and
// the weather outlook.
type RiskModel struct {
	initialized bool
}

func NewRiskModel() *RiskModel {
	return &RiskModel{}
}

func (m *RiskModel) Name() string {
	return "hazard-risk"
}

func (m *RiskModel) Kind() models.ModelKind {
	return models.KindRisk
}

func (m *RiskModel) Initialize(ctx context.Context) error {
	m.initialized = true
	return nil
}

func (m *RiskModel) Predict(ctx context.Context, input *Input) (*models.ModelResult, error) {
	if !m.initialized {
		return nil, &PredictionError{Model: m.Name(), Reason: "predict before initialize", Err: ErrNotInitialized}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PredictionError{Model: m.Name(), Reason: "context cancelled", Err: err}
	}
	if input == nil || input.Current == nil {
		return nil, invalidInput(m.Name(), "missing current observation")
	}

	obs := input.Current
	level := 0.0
	var factors []string

	record := func(score float64, format string, args ...interface{}) {
		if score > level {
			level = score
		}
		factors = append(factors, fmt.Sprintf(format, args...))
	}

	if obs.Rainfall >= 20 {
		record(clampScore(obs.Rainfall*2), "intense rainfall %.1f mm/h", obs.Rainfall)
	} else if obs.Rainfall >= 10 {
		record(40, "sustained rainfall %.1f mm/h", obs.Rainfall)
	}

	if obs.Temperature >= 40 {
		record(clampScore(50+(obs.Temperature-40)*5), "extreme heat %.1f C", obs.Temperature)
	} else if obs.Temperature <= 2 {
		record(clampScore(50+(2-obs.Temperature)*5), "frost conditions %.1f C", obs.Temperature)
	}

	if obs.WindSpeed >= 60 {
		record(clampScore(obs.WindSpeed), "damaging wind %.0f km/h", obs.WindSpeed)
	}

	confidence := 0.8
	if input.Weather != nil {
		horizon := float64(input.Weather.HorizonDays)
		if horizon <= 0 {
			horizon = 7
		}
		if daily := input.Weather.ExpectedRainfall / horizon; daily > 30 {
			record(clampScore(daily*1.5), "heavy rainfall expected %.0f mm/day", daily)
		}
		confidence = 0.85
	}

	return &models.ModelResult{
		Kind:        models.KindRisk,
		ModelName:   m.Name(),
		Confidence:  confidence,
		GeneratedAt: time.Now(),
		Data: &models.RiskOutlook{
			Level:   level,
			Factors: factors,
		},
	}, nil
}
