package models

import (
	"fmt"
	"time"
)

type AlertType string

const (
	AlertFlood   AlertType = "flood"
	AlertHeat    AlertType = "heat"
	AlertCold    AlertType = "cold"
	AlertWind    AlertType = "wind"
	AlertDrought AlertType = "drought"
)

func AllAlertTypes() []AlertType {
	return []AlertType{AlertFlood, AlertHeat, AlertCold, AlertWind, AlertDrought}
}

type AlertLevel string

const (
	LevelLow      AlertLevel = "low"
	LevelMedium   AlertLevel = "medium"
	LevelHigh     AlertLevel = "high"
	LevelCritical AlertLevel = "critical"
)

// AlertLevels returns the ladder order, lowest first
func AlertLevels() []AlertLevel {
	return []AlertLevel{LevelLow, LevelMedium, LevelHigh, LevelCritical}
}

// Rank orders levels: low=1 ... critical=4, unknown=0
func (l AlertLevel) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	case LevelCritical:
		return 4
	default:
		return 0
	}
}

// ThresholdLevel is one rung of a severity ladder
type ThresholdLevel struct {
	Type  AlertType  `json:"type"`
	Level AlertLevel `json:"level"`
	Value float64    `json:"value"`
	Unit  string     `json:"unit"`
}

// AlertKey identifies the single active-alert slot per location and type.
// Level is state, not identity: a level change supersedes, it does not
// create a second active alert.
type AlertKey struct {
	LocationID string
	Type       AlertType
}

func (k AlertKey) String() string {
	return fmt.Sprintf("%s/%s", k.LocationID, k.Type)
}

// Alert is an active or historical threshold crossing
type Alert struct {
	ID              string     `json:"id"`
	Type            AlertType  `json:"type"`
	LocationID      string     `json:"location_id"`
	Level           AlertLevel `json:"level"`
	TriggeringValue float64    `json:"triggering_value"`
	Unit            string     `json:"unit,omitempty"`
	Message         string     `json:"message"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	Active          bool       `json:"active"`
}

func (a *Alert) Key() AlertKey {
	return AlertKey{LocationID: a.LocationID, Type: a.Type}
}

func (a *Alert) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
