package alerting

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Transition classifies the outcome of applying a new evaluation to
// the alert state machine for one (location, type) key.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionRaised
	TransitionSuperseded
	TransitionCleared
)

func (t Transition) String() string {
	switch t {
	case TransitionRaised:
		return "raised"
	case TransitionSuperseded:
		return "superseded"
	case TransitionCleared:
		return "cleared"
	default:
		return "none"
	}
}

// Outcome reports what a transition did. Alert is the newly raised
// alert (raised/superseded); Previous is the deactivated one
// (superseded/cleared). Expired carries an alert whose TTL had lapsed
// before any sweep ran; Apply deactivates it as a side effect and the
// caller must still emit its expiry.
type Outcome struct {
	Transition Transition
	Alert      *models.Alert
	Previous   *models.Alert
	Expired    *models.Alert
}

const defaultTTL = time.Hour

// Store tracks the single active alert per (location, type) key.
// The compare-and-transition step is atomic per key: each entry has
// its own lock so concurrent evaluations of different keys never
// serialize, while two evaluations of the same key cannot both
// decide "this is new".
type Store struct {
	entries map[models.AlertKey]*entry
	mu      sync.RWMutex
	clock   clockwork.Clock
	ttl     map[models.AlertType]time.Duration
}

type entry struct {
	mu     sync.Mutex
	active *models.Alert
}

type StoreConfig struct {
	Clock clockwork.Clock
	TTL   map[models.AlertType]time.Duration
}

func NewStore(cfg StoreConfig) *Store {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		entries: make(map[models.AlertKey]*entry),
		clock:   clock,
		ttl:     cfg.TTL,
	}
}

func (s *Store) entryFor(key models.AlertKey) *entry {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[key]; ok {
		return e
	}
	e = &entry{}
	s.entries[key] = e
	return e
}

func (s *Store) ttlFor(alertType models.AlertType) time.Duration {
	if d, ok := s.ttl[alertType]; ok && d > 0 {
		return d
	}
	return defaultTTL
}

// Apply runs the state machine for one key. An empty level means the
// reading stayed below the lowest threshold.
//
//	NONE   -> ACTIVE(level): raise
//	ACTIVE -> same level:    no-op (deduplicated)
//	ACTIVE -> other level:   supersede (deactivate old, raise new)
//	ACTIVE -> NONE:          clear
//
// An active alert whose TTL has already lapsed is deactivated here and
// reported via Outcome.Expired; the new evaluation then proceeds
// against empty state, so a crossing raises rather than supersedes.
func (s *Store) Apply(key models.AlertKey, level models.AlertLevel, value float64, unit, message string) Outcome {
	e := s.entryFor(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.clock.Now()
	current := e.active
	var expired *models.Alert
	if current != nil {
		switch {
		case !current.Active:
			e.active = nil
			current = nil
		case current.IsExpired(now):
			expired = s.deactivate(e)
			current = nil
		}
	}

	if level == "" {
		if current == nil {
			return Outcome{Transition: TransitionNone, Expired: expired}
		}
		cleared := s.deactivate(e)
		return Outcome{Transition: TransitionCleared, Previous: cleared}
	}

	if current != nil && current.Level == level {
		return Outcome{Transition: TransitionNone}
	}

	alert := &models.Alert{
		ID:              models.NewUUID(),
		Type:            key.Type,
		LocationID:      key.LocationID,
		Level:           level,
		TriggeringValue: value,
		Unit:            unit,
		Message:         message,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttlFor(key.Type)),
		Active:          true,
	}

	if current == nil {
		e.active = alert
		return Outcome{Transition: TransitionRaised, Alert: alert, Expired: expired}
	}

	previous := s.deactivate(e)
	e.active = alert
	return Outcome{Transition: TransitionSuperseded, Alert: alert, Previous: previous}
}

// deactivate marks the entry's alert inactive and returns a copy.
// Caller holds the entry lock.
func (s *Store) deactivate(e *entry) *models.Alert {
	e.active.Active = false
	copied := *e.active
	e.active = nil
	return &copied
}

// Sweep deactivates every alert whose expiry has passed and returns
// them. Repeated sweeps are no-ops for already-expired alerts.
func (s *Store) Sweep() []models.Alert {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	now := s.clock.Now()
	var expired []models.Alert
	for _, e := range entries {
		e.mu.Lock()
		if e.active != nil && e.active.Active && e.active.IsExpired(now) {
			expired = append(expired, *s.deactivate(e))
		}
		e.mu.Unlock()
	}
	return expired
}

// Active returns copies of all currently active alerts
func (s *Store) Active() []models.Alert {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	now := s.clock.Now()
	var out []models.Alert
	for _, e := range entries {
		e.mu.Lock()
		if e.active != nil && e.active.Active && !e.active.IsExpired(now) {
			out = append(out, *e.active)
		}
		e.mu.Unlock()
	}
	return out
}

// ActiveForLocation filters Active by location
func (s *Store) ActiveForLocation(locationID string) []models.Alert {
	var out []models.Alert
	for _, a := range s.Active() {
		if a.LocationID == locationID {
			out = append(out, a)
		}
	}
	return out
}

// Get returns a copy of the active alert for one key, if any
func (s *Store) Get(key models.AlertKey) (models.Alert, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return models.Alert{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || !e.active.Active {
		return models.Alert{}, false
	}
	return *e.active, true
}
