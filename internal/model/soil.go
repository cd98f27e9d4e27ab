package model

import (
	"context"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// SoilModel estimates moisture and soil health from the current
// observation, inferring moisture from rainfall and humidity when the
// station has no probe.
type SoilModel struct {
	initialized bool
}

func NewSoilModel() *SoilModel {
	return &SoilModel{}
}

func (m *SoilModel) Name() string {
	return "soil-heuristic"
}

func (m *SoilModel) Kind() models.ModelKind {
	return models.KindSoil
}

func (m *SoilModel) Initialize(ctx context.Context) error {
	m.initialized = true
	return nil
}

func (m *SoilModel) Predict(ctx context.Context, input *Input) (*models.ModelResult, error) {
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
	confidence := 0.85

	moisture := obs.SoilMoisture
	if !obs.HasSoilMoisture() {
		// Inferred moisture carries less confidence than a probe reading
		moisture = clampScore(obs.Humidity*0.4 + obs.Rainfall*5)
		confidence = 0.6
	}

	// Health peaks around 55% moisture and degrades toward the extremes
	distance := moisture - 55
	if distance < 0 {
		distance = -distance
	}
	health := clampScore(95 - distance*1.3)

	erosion := clampScore(obs.Rainfall*3 + obs.WindSpeed*0.5)

	assessment := &models.SoilAssessment{
		Moisture:    moisture,
		HealthScore: health,
		PHEstimate:  6.5,
		ErosionRisk: erosion,
	}
	if health < 50 {
		assessment.NutrientNote = "soil stress indicators present, consider testing"
	}

	return &models.ModelResult{
		Kind:        models.KindSoil,
		ModelName:   m.Name(),
		Confidence:  clampConfidence(confidence),
		GeneratedAt: time.Now(),
		Data:        assessment,
		Metadata: map[string]interface{}{
			"probe_reading": obs.HasSoilMoisture(),
		},
	}, nil
}
