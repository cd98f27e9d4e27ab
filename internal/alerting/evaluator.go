package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/internal/metrics"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Notifier receives alert lifecycle events for broadcast. Delivery is
// fire-and-forget; the evaluator never waits on subscribers.
type Notifier interface {
	AlertRaised(alert *models.Alert)
	AlertSuperseded(previous, current *models.Alert)
	AlertCleared(alert *models.Alert)
	AlertExpired(alert *models.Alert)
}

// Evaluator maps observation fields onto alert types and drives the
// per-key state machine in the store.
type Evaluator struct {
	ladder   *Ladder
	store    *Store
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewEvaluator(ladder *Ladder, store *Store, notifier Notifier) *Evaluator {
	if ladder == nil {
		ladder = DefaultLadder()
	}
	return &Evaluator{
		ladder:   ladder,
		store:    store,
		notifier: notifier,
	}
}

// WithMetrics attaches alert gauges and transition counters
func (e *Evaluator) WithMetrics(m *metrics.Metrics) *Evaluator {
	e.metrics = m
	return e
}

// reading is one (type, value) pair derived from an observation
type reading struct {
	alertType models.AlertType
	value     float64
	present   bool
}

// readings derives ladder inputs from an observation. Cold converts
// to degrees below zero and drought to soil moisture deficit below
// 50%, matching the default ladder units.
func readings(obs *models.Observation) []reading {
	out := []reading{
		{alertType: models.AlertFlood, value: obs.Rainfall, present: true},
		{alertType: models.AlertHeat, value: obs.Temperature, present: true},
		{alertType: models.AlertCold, value: -obs.Temperature, present: true},
		{alertType: models.AlertWind, value: obs.WindSpeed, present: true},
	}
	if obs.HasSoilMoisture() {
		out = append(out, reading{
			alertType: models.AlertDrought,
			value:     50 - obs.SoilMoisture,
			present:   true,
		})
	}
	return out
}

// Evaluate runs every derivable reading through the ladder and the
// state machine. It returns the alerts newly raised by this
// observation (including superseding ones).
func (e *Evaluator) Evaluate(obs *models.Observation) []models.Alert {
	var raised []models.Alert

	for _, r := range readings(obs) {
		if !r.present {
			continue
		}

		level, crossed := e.ladder.Evaluate(r.alertType, r.value)
		key := models.AlertKey{LocationID: obs.LocationID, Type: r.alertType}

		var outcome Outcome
		if !crossed {
			outcome = e.store.Apply(key, "", r.value, "", "")
		} else {
			unit := e.ladder.Unit(r.alertType)
			msg := fmt.Sprintf("%s alert for %s: %.1f %s (%s)",
				r.alertType, obs.LocationID, r.value, unit, level)
			outcome = e.store.Apply(key, level, r.value, unit, msg)
		}

		// A lapsed alert found before any sweep ran expires here
		if outcome.Expired != nil {
			logger.WithLocation(obs.LocationID).Infof(
				"Alert expired: %s %s", r.alertType, outcome.Expired.Level)
			e.countTransition("expired")
			if e.notifier != nil {
				e.notifier.AlertExpired(outcome.Expired)
			}
		}

		switch outcome.Transition {
		case TransitionRaised:
			logger.WithLocation(obs.LocationID).Infof("Alert raised: %s %s", r.alertType, level)
			e.countTransition("raised")
			if e.notifier != nil {
				e.notifier.AlertRaised(outcome.Alert)
			}
			raised = append(raised, *outcome.Alert)

		case TransitionSuperseded:
			logger.WithLocation(obs.LocationID).Infof(
				"Alert superseded: %s %s -> %s", r.alertType, outcome.Previous.Level, level)
			e.countTransition("superseded")
			if e.notifier != nil {
				e.notifier.AlertSuperseded(outcome.Previous, outcome.Alert)
			}
			raised = append(raised, *outcome.Alert)

		case TransitionCleared:
			logger.WithLocation(obs.LocationID).Infof("Alert cleared: %s", r.alertType)
			e.countTransition("cleared")
			if e.notifier != nil {
				e.notifier.AlertCleared(outcome.Previous)
			}
		}
	}

	e.updateActiveGauge()
	return raised
}

func (e *Evaluator) countTransition(transition string) {
	if e.metrics != nil {
		e.metrics.AlertTransitions.WithLabelValues(transition).Inc()
	}
}

// updateActiveGauge resets the per-type gauge from the store so expired
// and cleared entries drop to zero.
func (e *Evaluator) updateActiveGauge() {
	if e.metrics == nil {
		return
	}
	counts := make(map[models.AlertType]int)
	for _, alert := range e.store.Active() {
		counts[alert.Type]++
	}
	for _, t := range models.AllAlertTypes() {
		e.metrics.ActiveAlerts.WithLabelValues(string(t)).Set(float64(counts[t]))
	}
}

// Sweep expires overdue alerts once and notifies for each
func (e *Evaluator) Sweep() []models.Alert {
	expired := e.store.Sweep()
	for i := range expired {
		logger.WithLocation(expired[i].LocationID).Infof(
			"Alert expired: %s %s", expired[i].Type, expired[i].Level)
		e.countTransition("expired")
		if e.notifier != nil {
			e.notifier.AlertExpired(&expired[i])
		}
	}
	if len(expired) > 0 {
		e.updateActiveGauge()
	}
	return expired
}

// RunSweeps periodically expires alerts until the context is done.
// Uses the store clock so tests can drive it with a fake.
func (e *Evaluator) RunSweeps(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := e.store.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			e.Sweep()
		}
	}
}

// Store exposes the underlying alert store for read access
func (e *Evaluator) Store() *Store {
	return e.store
}
