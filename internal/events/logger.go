package events

import (
	"context"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// AlertWriter persists alert lifecycle changes. Advisories are stored
// synchronously by the orchestrator; the event log only owns alerts.
type AlertWriter interface {
	Insert(ctx context.Context, alert *models.Alert) error
	MarkInactive(ctx context.Context, alertID string) error
	Supersede(ctx context.Context, previousID string, current *models.Alert) error
}

// EventLogger drains the event stream, logs every event by severity,
// and persists alert lifecycle events through the injected writer.
type EventLogger struct {
	alerts    AlertWriter
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventLogger(alerts AlertWriter, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		alerts:    alerts,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type":  event.Type,
		"location_id": event.LocationID,
		"severity":    event.Severity,
		"trace_id":    event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	switch event.Type {
	case models.EventTypeAlertRaised:
		l.persistAlert(event)
	case models.EventTypeAlertSuperseded:
		l.persistSupersession(event)
	case models.EventTypeAlertCleared, models.EventTypeAlertExpired:
		l.deactivateAlert(event)
	}
}

func (l *EventLogger) persistAlert(event *models.Event) {
	if l.alerts == nil {
		return
	}
	alert, ok := event.Data.(*models.Alert)
	if !ok {
		return
	}
	if err := l.alerts.Insert(l.ctx, alert); err != nil {
		logger.Errorf("Failed to persist alert: %v", err)
	}
}

func (l *EventLogger) persistSupersession(event *models.Event) {
	if l.alerts == nil {
		return
	}
	data, ok := event.Data.(map[string]interface{})
	if !ok {
		return
	}

	previous, ok := data["previous"].(*models.Alert)
	if !ok {
		return
	}
	current, ok := data["current"].(*models.Alert)
	if !ok {
		return
	}
	if err := l.alerts.Supersede(l.ctx, previous.ID, current); err != nil {
		logger.Errorf("Failed to persist alert supersession: %v", err)
	}
}

func (l *EventLogger) deactivateAlert(event *models.Event) {
	if l.alerts == nil {
		return
	}
	alert, ok := event.Data.(*models.Alert)
	if !ok {
		return
	}
	if err := l.alerts.MarkInactive(l.ctx, alert.ID); err != nil {
		logger.Errorf("Failed to deactivate alert: %v", err)
	}
}
