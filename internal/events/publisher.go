package events

import (
	"github.com/OldStager01/agro-advisor/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) AdvisoryGenerated(advisory *models.Advisory) {
	event := models.NewEvent(models.EventTypeAdvisoryGenerated, advisory.LocationID, "Advisory generated").
		WithData(advisory)
	if advisory.Degraded {
		event.WithSeverity(models.SeverityWarning)
	}
	p.publish(event)
}

func (p *Publisher) AlertRaised(alert *models.Alert) {
	event := models.NewEvent(models.EventTypeAlertRaised, alert.LocationID, alert.Message).
		WithSeverity(alertSeverity(alert.Level)).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) AlertSuperseded(previous, current *models.Alert) {
	msg := "Alert superseded: " + string(previous.Level) + " -> " + string(current.Level)
	event := models.NewEvent(models.EventTypeAlertSuperseded, current.LocationID, msg).
		WithSeverity(alertSeverity(current.Level)).
		WithData(map[string]interface{}{
			"previous": previous,
			"current":  current,
		})
	p.publish(event)
}

func (p *Publisher) AlertCleared(alert *models.Alert) {
	event := models.NewEvent(models.EventTypeAlertCleared, alert.LocationID, "Alert cleared: "+string(alert.Type)).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) AlertExpired(alert *models.Alert) {
	event := models.NewEvent(models.EventTypeAlertExpired, alert.LocationID, "Alert expired: "+string(alert.Type)).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) ModelFailed(locationID, modelName string, err error) {
	event := models.NewEvent(models.EventTypeModelFailed, locationID, "Model failed: "+modelName).
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"model": modelName,
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) AnalysisFailed(locationID string, err error) {
	event := models.NewEvent(models.EventTypeAnalysisFailed, locationID, "Analysis failed").
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) Error(locationID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, locationID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func alertSeverity(level models.AlertLevel) models.EventSeverity {
	switch level {
	case models.LevelCritical, models.LevelHigh:
		return models.SeverityCritical
	case models.LevelMedium:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
