package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/OldStager01/agro-advisor/internal/aggregate"
	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/internal/model"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Phase membership. Phase-1 models depend only on observations;
// phase-2 models additionally consume phase-1 outputs.
var (
	phaseOne = []models.ModelKind{models.KindWeather, models.KindSoil}
	phaseTwo = []models.ModelKind{models.KindCrop, models.KindIrrigation, models.KindEnergy, models.KindRisk}
)

// runPhases executes the two-phase fan-out. Models within a phase run
// concurrently; phase 2 starts only after phase 1 has fully settled.
// Every requested model contributes exactly one result, placeholder
// or real.
func (o *Orchestrator) runPhases(ctx context.Context, input *model.Input) aggregate.ResultSet {
	results := make(aggregate.ResultSet)
	scope := input.Request.ResolveScope()

	o.runPhase(ctx, inScope(phaseOne, scope), input, results)

	// Thread phase-1 outputs into the shared input before phase 2.
	// Placeholders stay nil so phase-2 models use their fallbacks.
	if r, ok := results[models.KindWeather]; ok && !r.Placeholder {
		if w, ok := r.Data.(*models.WeatherOutlook); ok {
			input.Weather = w
		}
	}
	if r, ok := results[models.KindSoil]; ok && !r.Placeholder {
		if s, ok := r.Data.(*models.SoilAssessment); ok {
			input.Soil = s
		}
	}

	o.runPhase(ctx, inScope(phaseTwo, scope), input, results)
	return results
}

func inScope(kinds []models.ModelKind, scope map[models.ModelKind]bool) []models.ModelKind {
	out := make([]models.ModelKind, 0, len(kinds))
	for _, k := range kinds {
		if scope[k] {
			out = append(out, k)
		}
	}
	return out
}

func (o *Orchestrator) runPhase(ctx context.Context, kinds []models.ModelKind, input *model.Input, results aggregate.ResultSet) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, kind := range kinds {
		m, ok := o.registry.Get(kind)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(kind models.ModelKind, m model.Model) {
			defer wg.Done()
			result := o.invoke(ctx, m, input)

			mu.Lock()
			results[kind] = result
			mu.Unlock()
		}(kind, m)
	}

	wg.Wait()
}

// invoke runs a single model under its own timeout. The tracker and
// metrics record every call. A failed call yields a placeholder
// result so aggregation always sees the full model set.
func (o *Orchestrator) invoke(ctx context.Context, m model.Model, input *model.Input) *models.ModelResult {
	predictCtx, cancel := context.WithTimeout(ctx, o.predictTimeout)
	defer cancel()

	started := time.Now()
	result, err := m.Predict(predictCtx, input)
	elapsed := time.Since(started)

	if err != nil || result == nil {
		if err == nil {
			err = ErrInvalidRequest
		}
		o.tracker.Record(m.Name(), elapsed, 0, false)
		if o.metrics != nil {
			o.metrics.ObserveModel(m.Name(), elapsed, false)
		}
		logger.WithModel(m.Name()).Warnf("Prediction failed: %v", err)
		if o.publisher != nil {
			o.publisher.ModelFailed(input.Request.LocationID, m.Name(), err)
		}
		return placeholderResult(m)
	}

	o.tracker.Record(m.Name(), elapsed, result.Confidence, true)
	if o.metrics != nil {
		o.metrics.ObserveModel(m.Name(), elapsed, true)
	}
	return result
}

// placeholderResult stands in for a failed model so the advisory
// keeps its shape. Carries no payload and near-zero confidence.
func placeholderResult(m model.Model) *models.ModelResult {
	return &models.ModelResult{
		Kind:        m.Kind(),
		ModelName:   m.Name(),
		Confidence:  placeholderConfidence,
		GeneratedAt: time.Now(),
		Placeholder: true,
	}
}
