package models

import "time"

// Observation represents a single weather observation for a location
type Observation struct {
	LocationID   string    `json:"location_id"`
	Timestamp    time.Time `json:"timestamp"`
	Temperature  float64   `json:"temperature"`   // celsius
	Humidity     float64   `json:"humidity"`      // percent
	Rainfall     float64   `json:"rainfall"`      // mm/h
	WindSpeed    float64   `json:"wind_speed"`    // km/h
	SoilMoisture float64   `json:"soil_moisture"` // percent, 0 when the station has no probe
	Pressure     float64   `json:"pressure"`      // hPa
}

// HasSoilMoisture reports whether the station supplied a soil moisture reading
func (o *Observation) HasSoilMoisture() bool {
	return o.SoilMoisture > 0
}

// Location describes a monitored location
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Region    string  `json:"region,omitempty"`
}
