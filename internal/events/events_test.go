package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/events"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func TestEventBus_TypedSubscription(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	raised := bus.Subscribe(models.EventTypeAlertRaised)

	bus.Publish(&models.Event{Type: models.EventTypeAdvisoryGenerated, LocationID: "delhi"})
	bus.Publish(&models.Event{Type: models.EventTypeAlertRaised, LocationID: "delhi"})

	event := receive(t, raised)
	assert.Equal(t, models.EventTypeAlertRaised, event.Type)
	assert.Empty(t, raised)
}

func TestEventBus_SubscribeAllSeesEveryType(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	all := bus.SubscribeAll()

	bus.Publish(&models.Event{Type: models.EventTypeAdvisoryGenerated})
	bus.Publish(&models.Event{Type: models.EventTypeAlertCleared})
	bus.Publish(&models.Event{Type: models.EventTypeModelFailed})

	assert.Equal(t, models.EventTypeAdvisoryGenerated, receive(t, all).Type)
	assert.Equal(t, models.EventTypeAlertCleared, receive(t, all).Type)
	assert.Equal(t, models.EventTypeModelFailed, receive(t, all).Type)
}

func TestEventBus_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	bus := events.NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlertRaised)

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.Publish(&models.Event{Type: models.EventTypeAlertRaised})
		bus.Publish(&models.Event{Type: models.EventTypeAlertRaised})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	receive(t, ch)
	assert.Empty(t, ch)
}

func TestEventBus_PublishAfterCloseIsNoOp(t *testing.T) {
	bus := events.NewEventBus(10)
	ch := bus.SubscribeAll()

	bus.Close()
	bus.Publish(&models.Event{Type: models.EventTypeAlertRaised})

	_, open := <-ch
	assert.False(t, open)
}

func TestPublisher_CarriesAlertPayloads(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	all := bus.SubscribeAll()

	publisher := events.NewPublisher(bus)

	alert := &models.Alert{
		ID:         models.NewUUID(),
		LocationID: "delhi",
		Type:       models.AlertFlood,
		Level:      models.LevelHigh,
		Active:     true,
	}
	publisher.AlertRaised(alert)

	event := receive(t, all)
	require.Equal(t, models.EventTypeAlertRaised, event.Type)
	assert.Equal(t, "delhi", event.LocationID)

	payload, ok := event.Data.(*models.Alert)
	require.True(t, ok)
	assert.Equal(t, alert.ID, payload.ID)
}

func TestPublisher_SupersededCarriesBothAlerts(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	all := bus.SubscribeAll()

	publisher := events.NewPublisher(bus)

	previous := &models.Alert{ID: models.NewUUID(), LocationID: "delhi", Type: models.AlertFlood, Level: models.LevelLow}
	current := &models.Alert{ID: models.NewUUID(), LocationID: "delhi", Type: models.AlertFlood, Level: models.LevelHigh, Active: true}
	publisher.AlertSuperseded(previous, current)

	event := receive(t, all)
	require.Equal(t, models.EventTypeAlertSuperseded, event.Type)

	data, ok := event.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, previous, data["previous"])
	assert.Equal(t, current, data["current"])
}
