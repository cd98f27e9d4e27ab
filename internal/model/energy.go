package model

import (
	"context"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// EnergyModel estimates on-farm energy efficiency and solar potential
// from the weather outlook.
type EnergyModel struct {
	initialized bool
}

func NewEnergyModel() *EnergyModel {
	return &EnergyModel{}
}

func (m *EnergyModel) Name() string {
	return "energy-profile"
}

func (m *EnergyModel) Kind() models.ModelKind {
	return models.KindEnergy
}

func (m *EnergyModel) Initialize(ctx context.Context) error {
	m.initialized = true
	return nil
}

func (m *EnergyModel) Predict(ctx context.Context, input *Input) (*models.ModelResult, error) {
	if !m.initialized {
		return nil, &PredictionError{Model: m.Name(), Reason: "predict before initialize", Err: ErrNotInitialized}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PredictionError{Model: m.Name(), Reason: "context cancelled", Err: err}
	}
	if input == nil || input.Weather == nil {
		return nil, &PredictionError{Model: m.Name(), Reason: "weather outlook unavailable", Err: ErrInsufficientData}
	}

	outlook := input.Weather
	horizon := float64(outlook.HorizonDays)
	if horizon <= 0 {
		horizon = 7
	}

	// Heavy cloud cover (proxied by humidity and rainfall) cuts solar yield
	rainyShare := clampScore(outlook.ExpectedRainfall / horizon * 4)
	solar := clampScore(100 - rainyShare*0.6 - (outlook.AvgHumidity-50)*0.4)

	// Pumping demand rises in hot dry spells, dragging efficiency down
	heatLoad := 0.0
	if outlook.AvgTemperature > 30 {
		heatLoad = (outlook.AvgTemperature - 30) * 2
	}
	efficiency := clampScore(85 - heatLoad + solar*0.1)

	saving := clampScore(solar * 0.3)

	return &models.ModelResult{
		Kind:        models.KindEnergy,
		ModelName:   m.Name(),
		Confidence:  0.75,
		GeneratedAt: time.Now(),
		Data: &models.EnergyProfile{
			Efficiency:      efficiency,
			SolarPotential:  solar,
			EstimatedSaving: saving,
		},
	}, nil
}
