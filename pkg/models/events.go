package models

import "time"

type EventType string

const (
	EventTypeAdvisoryGenerated EventType = "advisory_generated"
	EventTypeAlertRaised       EventType = "alert_raised"
	EventTypeAlertSuperseded   EventType = "alert_superseded"
	EventTypeAlertCleared      EventType = "alert_cleared"
	EventTypeAlertExpired      EventType = "alert_expired"
	EventTypeModelFailed       EventType = "model_failed"
	EventTypeAnalysisFailed    EventType = "analysis_failed"
	EventTypeError             EventType = "error"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event
type Event struct {
	ID         string        `json:"id"`
	Type       EventType     `json:"type"`
	Severity   EventSeverity `json:"severity"`
	LocationID string        `json:"location_id,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	Message    string        `json:"message"`
	Data       interface{}   `json:"data,omitempty"`
	TraceID    string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, locationID, message string) *Event {
	return &Event{
		ID:         NewUUID(),
		Type:       eventType,
		Severity:   SeverityInfo,
		LocationID: locationID,
		Timestamp:  time.Now(),
		Message:    message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}
