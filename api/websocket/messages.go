package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageTypeAdvisory        MessageType = "advisory"
	MessageTypeAlertRaised     MessageType = "alert_raised"
	MessageTypeAlertSuperseded MessageType = "alert_superseded"
	MessageTypeAlertCleared    MessageType = "alert_cleared"
	MessageTypeAlertExpired    MessageType = "alert_expired"
	MessageTypeModelFailed     MessageType = "model_failed"
	MessageTypeError           MessageType = "error"
)

type OutgoingMessage struct {
	Type       MessageType `json:"type"`
	LocationID string      `json:"location_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Severity   string      `json:"severity,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func NewMessage(msgType MessageType, locationID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:       msgType,
		LocationID: locationID,
		Timestamp:  time.Now(),
		Data:       data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}
