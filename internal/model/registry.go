package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Registry resolves models by kind. Registration happens at startup;
// lookups afterwards are read-only.
type Registry struct {
	models map[models.ModelKind]Model
	mu     sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		models: make(map[models.ModelKind]Model),
	}
}

func (r *Registry) Register(m Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[m.Kind()]; exists {
		return fmt.Errorf("model already registered for kind %s", m.Kind())
	}
	r.models[m.Kind()] = m
	return nil
}

func (r *Registry) Get(kind models.ModelKind) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[kind]
	return m, ok
}

func (r *Registry) Kinds() []models.ModelKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]models.ModelKind, 0, len(r.models))
	for _, k := range models.AllKinds() {
		if _, ok := r.models[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// InitializeAll initializes every registered model. Any failure is
// fatal to startup and propagates to the caller.
func (r *Registry) InitializeAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for kind, m := range r.models {
		if err := m.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s model: %w", kind, err)
		}
		logger.WithModel(m.Name()).Debug("Model initialized")
	}
	return nil
}

// DefaultRegistry builds a registry with the full model set. The set
// has exactly one model per kind, so registration cannot fail; a
// failure here is a programming error.
func DefaultRegistry(crops []string) *Registry {
	r := NewRegistry()
	for _, m := range []Model{
		NewWeatherModel(),
		NewSoilModel(),
		NewCropModel(crops),
		NewIrrigationModel(),
		NewEnergyModel(),
		NewRiskModel(),
	} {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}
