package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

var (
	ErrNotInitialized   = errors.New("model not initialized")
	ErrInsufficientData = errors.New("insufficient observation data")
	ErrInvalidInput     = errors.New("invalid prediction input")
	ErrUnknownCrop      = errors.New("unknown crop")
)

// PredictionError wraps a failed model invocation. It is always
// contained by the orchestrator, never propagated to callers.
type PredictionError struct {
	Model  string
	Reason string
	Err    error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model %s: %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("model %s: %s", e.Model, e.Reason)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// Input carries everything a model may consume for one invocation.
// Weather and Soil are populated for phase-2 models from phase-1
// results; either may be nil when the dependency failed, and models
// must fall back to documented defaults.
type Input struct {
	Request *models.AnalysisRequest
	Current *models.Observation
	History []models.Observation
	Weather *models.WeatherOutlook
	Soil    *models.SoilAssessment
}

// Model is the capability contract every prediction model satisfies.
// Predict must not retain references to the input beyond the call and
// must return within the caller's context deadline.
type Model interface {
	Name() string
	Kind() models.ModelKind
	Initialize(ctx context.Context) error
	Predict(ctx context.Context, input *Input) (*models.ModelResult, error)
}

// DefaultSoilMoisture substitutes for a missing soil result in
// phase-2 models.
const DefaultSoilMoisture = 50.0

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func invalidInput(name, reason string) error {
	return &PredictionError{Model: name, Reason: reason, Err: ErrInvalidInput}
}
