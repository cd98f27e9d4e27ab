package models

import "time"

type ActionPriority string

const (
	PriorityCritical ActionPriority = "critical"
	PriorityHigh     ActionPriority = "high"
	PriorityMedium   ActionPriority = "medium"
	PriorityLow      ActionPriority = "low"
)

// Rank maps a priority to its sort weight. Higher sorts first.
func (p ActionPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ActionItem is a single recommended action within an advisory
type ActionItem struct {
	Category        string         `json:"category"`
	Action          string         `json:"action"`
	Priority        ActionPriority `json:"priority"`
	EstimatedImpact string         `json:"estimated_impact,omitempty"`
	Cost            string         `json:"cost,omitempty"`
	Feasibility     string         `json:"feasibility,omitempty"`
}

type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskAssessment is the worst-case risk picture across all rules
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Score   float64   `json:"score"` // 0-100
	Factors []string  `json:"factors,omitempty"`
}

// SustainabilityMetrics are weighted projections clamped to [0,100]
type SustainabilityMetrics struct {
	WaterEfficiency  float64 `json:"water_efficiency"`
	SoilConservation float64 `json:"soil_conservation"`
	EnergyScore      float64 `json:"energy_score"`
	OverallIndex     float64 `json:"overall_index"`
}

// EconomicForecast projects the economic outlook, values in [0,100]
type EconomicForecast struct {
	YieldOutlook       float64 `json:"yield_outlook"`
	CostPressure       float64 `json:"cost_pressure"`
	ProfitabilityIndex float64 `json:"profitability_index"`
}

// Advisory aggregates all model results for one analysis request
type Advisory struct {
	ID                string                `json:"id"`
	LocationID        string                `json:"location_id"`
	OverallScore      int                   `json:"overall_score"`      // 0-100
	OverallConfidence float64               `json:"overall_confidence"` // 0-1
	Actions           []ActionItem          `json:"actions"`
	Risk              RiskAssessment        `json:"risk"`
	Sustainability    SustainabilityMetrics `json:"sustainability"`
	Economics         EconomicForecast      `json:"economics"`
	Results           []*ModelResult        `json:"results,omitempty"`
	Degraded          bool                  `json:"degraded,omitempty"` // set when models failed or the deadline cut the run short
	GeneratedAt       time.Time             `json:"generated_at"`
}
