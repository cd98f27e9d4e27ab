package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// record is the mutable running-average state for one model name.
// Each record carries its own lock so concurrent analyses touching
// different models never serialize on each other.
type record struct {
	mu                sync.Mutex
	totalCalls        uint64
	successfulCalls   uint64
	avgResponseTimeMs float64
	avgConfidence     float64
	lastUpdated       time.Time
}

// Tracker maintains per-model performance records for the process
// lifetime. Safe for concurrent use.
type Tracker struct {
	records map[string]*record
	mu      sync.RWMutex
}

func New() *Tracker {
	return &Tracker{
		records: make(map[string]*record),
	}
}

func (t *Tracker) get(modelName string) *record {
	t.mu.RLock()
	r, ok := t.records[modelName]
	t.mu.RUnlock()
	if ok {
		return r
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok = t.records[modelName]; ok {
		return r
	}
	r = &record{}
	t.records[modelName] = r
	return r
}

// Record folds one invocation into the running averages. Latency
// counts for every call; confidence only for successful ones.
func (t *Tracker) Record(modelName string, elapsed time.Duration, confidence float64, success bool) {
	r := t.get(modelName)

	r.mu.Lock()
	defer r.mu.Unlock()

	elapsedMs := float64(elapsed.Milliseconds())
	n := float64(r.totalCalls)
	r.avgResponseTimeMs = (r.avgResponseTimeMs*n + elapsedMs) / (n + 1)
	r.totalCalls++

	if success {
		s := float64(r.successfulCalls)
		r.avgConfidence = (r.avgConfidence*s + confidence) / (s + 1)
		r.successfulCalls++
	}
	r.lastUpdated = time.Now()
}

// Snapshot returns a copy of the record for one model, or false when
// the model has never been invoked.
func (t *Tracker) Snapshot(modelName string) (models.PerformanceRecord, bool) {
	t.mu.RLock()
	r, ok := t.records[modelName]
	t.mu.RUnlock()
	if !ok {
		return models.PerformanceRecord{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return models.PerformanceRecord{
		ModelName:             modelName,
		TotalCalls:            r.totalCalls,
		SuccessfulCalls:       r.successfulCalls,
		AverageResponseTimeMs: r.avgResponseTimeMs,
		AverageConfidence:     r.avgConfidence,
		LastUpdated:           r.lastUpdated,
	}, true
}

// All returns a snapshot of every record, sorted by model name
func (t *Tracker) All() []models.PerformanceRecord {
	t.mu.RLock()
	names := make([]string, 0, len(t.records))
	for name := range t.records {
		names = append(names, name)
	}
	t.mu.RUnlock()

	sort.Strings(names)

	out := make([]models.PerformanceRecord, 0, len(names))
	for _, name := range names {
		if snap, ok := t.Snapshot(name); ok {
			out = append(out, snap)
		}
	}
	return out
}
