package models

import "time"

// PerformanceRecord is the running-average record for one model name.
// Averages cover every invocation, success or failure; confidence only
// accumulates over successful calls.
type PerformanceRecord struct {
	ModelName             string    `json:"model_name"`
	TotalCalls            uint64    `json:"total_calls"`
	SuccessfulCalls       uint64    `json:"successful_calls"`
	AverageResponseTimeMs float64   `json:"average_response_time_ms"`
	AverageConfidence     float64   `json:"average_confidence"`
	LastUpdated           time.Time `json:"last_updated"`
}

// SuccessRate returns successful/total, or 0 before the first call
func (r *PerformanceRecord) SuccessRate() float64 {
	if r.TotalCalls == 0 {
		return 0
	}
	return float64(r.SuccessfulCalls) / float64(r.TotalCalls)
}
