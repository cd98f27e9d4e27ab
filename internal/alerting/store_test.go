package alerting_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/alerting"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func delhiFloodKey() models.AlertKey {
	return models.AlertKey{LocationID: "delhi", Type: models.AlertFlood}
}

func TestStore_Apply_RaiseAndDeduplicate(t *testing.T) {
	store := alerting.NewStore(alerting.StoreConfig{Clock: clockwork.NewFakeClock()})
	key := delhiFloodKey()

	outcome := store.Apply(key, models.LevelLow, 6.0, "mm/h", "flood low")
	require.Equal(t, alerting.TransitionRaised, outcome.Transition)
	require.NotNil(t, outcome.Alert)
	assert.True(t, outcome.Alert.Active)
	assert.Equal(t, models.LevelLow, outcome.Alert.Level)

	// Same level again must not produce a second alert
	outcome = store.Apply(key, models.LevelLow, 7.0, "mm/h", "flood low")
	assert.Equal(t, alerting.TransitionNone, outcome.Transition)

	active := store.Active()
	assert.Len(t, active, 1)
}

func TestStore_Apply_Supersession(t *testing.T) {
	store := alerting.NewStore(alerting.StoreConfig{Clock: clockwork.NewFakeClock()})
	key := delhiFloodKey()

	first := store.Apply(key, models.LevelMedium, 12.0, "mm/h", "flood medium")
	require.Equal(t, alerting.TransitionRaised, first.Transition)

	second := store.Apply(key, models.LevelCritical, 55.0, "mm/h", "flood critical")
	require.Equal(t, alerting.TransitionSuperseded, second.Transition)
	require.NotNil(t, second.Previous)

	assert.Equal(t, models.LevelMedium, second.Previous.Level)
	assert.False(t, second.Previous.Active)
	assert.Equal(t, models.LevelCritical, second.Alert.Level)

	// Exactly one active alert per key, at the new level
	active, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, models.LevelCritical, active.Level)
	assert.Len(t, store.Active(), 1)
}

func TestStore_Apply_DowngradeAlsoSupersedes(t *testing.T) {
	store := alerting.NewStore(alerting.StoreConfig{Clock: clockwork.NewFakeClock()})
	key := delhiFloodKey()

	store.Apply(key, models.LevelHigh, 25.0, "mm/h", "flood high")
	outcome := store.Apply(key, models.LevelLow, 6.0, "mm/h", "flood low")

	require.Equal(t, alerting.TransitionSuperseded, outcome.Transition)
	assert.Equal(t, models.LevelHigh, outcome.Previous.Level)
	assert.Equal(t, models.LevelLow, outcome.Alert.Level)
}

func TestStore_Apply_Clear(t *testing.T) {
	store := alerting.NewStore(alerting.StoreConfig{Clock: clockwork.NewFakeClock()})
	key := delhiFloodKey()

	store.Apply(key, models.LevelLow, 6.0, "mm/h", "flood low")

	outcome := store.Apply(key, "", 2.0, "", "")
	require.Equal(t, alerting.TransitionCleared, outcome.Transition)
	require.NotNil(t, outcome.Previous)
	assert.False(t, outcome.Previous.Active)

	// Clearing an empty slot is a no-op
	outcome = store.Apply(key, "", 1.0, "", "")
	assert.Equal(t, alerting.TransitionNone, outcome.Transition)
	assert.Empty(t, store.Active())
}

func TestStore_Sweep_ExpiresByTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := alerting.NewStore(alerting.StoreConfig{
		Clock: clock,
		TTL: map[models.AlertType]time.Duration{
			models.AlertFlood: 2 * time.Hour,
			models.AlertHeat:  6 * time.Hour,
		},
	})

	store.Apply(delhiFloodKey(), models.LevelLow, 6.0, "mm/h", "flood low")
	store.Apply(models.AlertKey{LocationID: "delhi", Type: models.AlertHeat},
		models.LevelMedium, 37.0, "C", "heat medium")

	// Before any expiry nothing sweeps
	assert.Empty(t, store.Sweep())

	// Past the flood TTL but not the heat TTL
	clock.Advance(3 * time.Hour)
	expired := store.Sweep()
	require.Len(t, expired, 1)
	assert.Equal(t, models.AlertFlood, expired[0].Type)
	assert.False(t, expired[0].Active)

	// Sweep is idempotent
	assert.Empty(t, store.Sweep())
	assert.Len(t, store.Active(), 1)

	clock.Advance(4 * time.Hour)
	expired = store.Sweep()
	require.Len(t, expired, 1)
	assert.Equal(t, models.AlertHeat, expired[0].Type)
	assert.Empty(t, store.Active())
}

func TestStore_RaiseAfterExpiryIsRaisedNotSuperseded(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := alerting.NewStore(alerting.StoreConfig{
		Clock: clock,
		TTL:   map[models.AlertType]time.Duration{models.AlertFlood: time.Hour},
	})
	key := delhiFloodKey()

	store.Apply(key, models.LevelLow, 6.0, "mm/h", "flood low")
	clock.Advance(2 * time.Hour)

	// The expired alert no longer counts as current state, but it must
	// surface in the outcome so callers can emit its expiry
	outcome := store.Apply(key, models.LevelMedium, 12.0, "mm/h", "flood medium")
	assert.Equal(t, alerting.TransitionRaised, outcome.Transition)
	assert.Nil(t, outcome.Previous)
	require.NotNil(t, outcome.Expired)
	assert.Equal(t, models.LevelLow, outcome.Expired.Level)
	assert.False(t, outcome.Expired.Active)

	// Nothing left to sweep afterwards
	assert.Empty(t, store.Sweep())
	assert.Len(t, store.Active(), 1)
}

func TestStore_Apply_BelowLadderAfterExpiryReportsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := alerting.NewStore(alerting.StoreConfig{
		Clock: clock,
		TTL:   map[models.AlertType]time.Duration{models.AlertFlood: time.Hour},
	})
	key := delhiFloodKey()

	store.Apply(key, models.LevelLow, 6.0, "mm/h", "flood low")
	clock.Advance(2 * time.Hour)

	// A calm reading after expiry is not a clear; the lapsed alert
	// still expires exactly once
	outcome := store.Apply(key, "", 1.0, "", "")
	assert.Equal(t, alerting.TransitionNone, outcome.Transition)
	require.NotNil(t, outcome.Expired)
	assert.Equal(t, models.LevelLow, outcome.Expired.Level)

	outcome = store.Apply(key, "", 1.0, "", "")
	assert.Equal(t, alerting.TransitionNone, outcome.Transition)
	assert.Nil(t, outcome.Expired)
}
