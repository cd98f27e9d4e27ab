package model

import (
	"context"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// IrrigationModel plans irrigation from the weather outlook and soil
// moisture. A failed soil model falls back to DefaultSoilMoisture.
type IrrigationModel struct {
	initialized bool
}

func NewIrrigationModel() *IrrigationModel {
	return &IrrigationModel{}
}

func (m *IrrigationModel) Name() string {
	return "irrigation-planner"
}

func (m *IrrigationModel) Kind() models.ModelKind {
	return models.KindIrrigation
}

func (m *IrrigationModel) Initialize(ctx context.Context) error {
	m.initialized = true
	return nil
}

func (m *IrrigationModel) Predict(ctx context.Context, input *Input) (*models.ModelResult, error) {
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
	confidence := 0.65
	if input.Soil != nil {
		moisture = input.Soil.Moisture
		confidence = 0.8
	}

	horizon := float64(input.Weather.HorizonDays)
	if horizon <= 0 {
		horizon = 7
	}
	dailyRain := input.Weather.ExpectedRainfall / horizon

	// Base crop water demand minus what rain and stored moisture supply
	demand := 45000.0 // liters/ha/day reference demand
	supplied := dailyRain*10000*0.8 + (moisture-30)*400
	requirement := demand - supplied
	if requirement < 0 {
		requirement = 0
	}

	method := "drip"
	if requirement > 30000 {
		method = "sprinkler"
	}

	// Efficiency improves as rainfall and moisture cover more demand
	efficiency := clampConfidence(1 - requirement/demand)

	plan := &models.IrrigationPlan{
		Efficiency:        efficiency,
		WaterRequirement:  requirement,
		RecommendedMethod: method,
	}
	if requirement == 0 {
		plan.ScheduleNote = "rainfall covers demand, pause irrigation"
	} else if moisture < 35 {
		plan.ScheduleNote = "low soil moisture, irrigate early morning"
	}

	return &models.ModelResult{
		Kind:        models.KindIrrigation,
		ModelName:   m.Name(),
		Confidence:  clampConfidence(confidence),
		GeneratedAt: time.Now(),
		Data:        plan,
		Metadata: map[string]interface{}{
			"soil_fallback": input.Soil == nil,
		},
	}, nil
}
