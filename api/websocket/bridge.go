package websocket

import (
	"context"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// EventBridge forwards pipeline events to WebSocket clients
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	msgType := mapEventType(event.Type)
	if msgType == "" {
		return
	}

	msg := NewMessage(msgType, event.LocationID, event.Data)
	msg.Timestamp = event.Timestamp
	msg.Severity = string(event.Severity)
	msg.Message = event.Message

	b.hub.BroadcastToLocation(event.LocationID, msg.JSON())
}

func mapEventType(eventType models.EventType) MessageType {
	switch eventType {
	case models.EventTypeAdvisoryGenerated:
		return MessageTypeAdvisory
	case models.EventTypeAlertRaised:
		return MessageTypeAlertRaised
	case models.EventTypeAlertSuperseded:
		return MessageTypeAlertSuperseded
	case models.EventTypeAlertCleared:
		return MessageTypeAlertCleared
	case models.EventTypeAlertExpired:
		return MessageTypeAlertExpired
	case models.EventTypeModelFailed:
		return MessageTypeModelFailed
	case models.EventTypeAnalysisFailed, models.EventTypeError:
		return MessageTypeError
	default:
		return ""
	}
}
