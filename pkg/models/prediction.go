package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ModelKind identifies a prediction model category
type ModelKind string

const (
	KindWeather    ModelKind = "weather"
	KindSoil       ModelKind = "soil"
	KindCrop       ModelKind = "crop"
	KindIrrigation ModelKind = "irrigation"
	KindEnergy     ModelKind = "energy"
	KindRisk       ModelKind = "risk"
)

// AllKinds returns every registered model kind in phase order
func AllKinds() []ModelKind {
	return []ModelKind{KindWeather, KindSoil, KindCrop, KindIrrigation, KindEnergy, KindRisk}
}

func ParseKind(s string) (ModelKind, error) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown model kind: %q", s)
}

// ModelResult is the output of a single model invocation.
// Data holds exactly one of the typed prediction payloads below,
// discriminated by Kind. Immutable once created.
type ModelResult struct {
	Kind        ModelKind              `json:"kind"`
	ModelName   string                 `json:"model_name"`
	Confidence  float64                `json:"confidence"` // always within [0,1]
	GeneratedAt time.Time              `json:"generated_at"`
	Data        interface{}            `json:"data,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Placeholder bool                   `json:"placeholder,omitempty"`
}

// WeatherOutlook is the weather model payload
type WeatherOutlook struct {
	LocationID       string    `json:"location_id"`
	HorizonDays      int       `json:"horizon_days"`
	AvgTemperature   float64   `json:"avg_temperature"`
	MaxTemperature   float64   `json:"max_temperature"`
	MinTemperature   float64   `json:"min_temperature"`
	ExpectedRainfall float64   `json:"expected_rainfall"` // mm over horizon
	AvgHumidity      float64   `json:"avg_humidity"`
	DailyRainfall    []float64 `json:"daily_rainfall,omitempty"`
}

// SoilAssessment is the soil model payload
type SoilAssessment struct {
	Moisture     float64 `json:"moisture"`     // percent
	HealthScore  float64 `json:"health_score"` // 0-100
	PHEstimate   float64 `json:"ph_estimate"`
	ErosionRisk  float64 `json:"erosion_risk"` // 0-100
	NutrientNote string  `json:"nutrient_note,omitempty"`
}

// CropSuitability is the crop model payload
type CropSuitability struct {
	Scores      map[string]float64 `json:"scores"` // crop name -> 0-100
	Recommended []string           `json:"recommended,omitempty"`
}

// AverageScore returns the mean suitability across all scored crops
func (c *CropSuitability) AverageScore() float64 {
	if len(c.Scores) == 0 {
		return 0
	}
	var total float64
	for _, s := range c.Scores {
		total += s
	}
	return total / float64(len(c.Scores))
}

// IrrigationPlan is the irrigation model payload
type IrrigationPlan struct {
	Efficiency        float64 `json:"efficiency"`          // 0-1
	WaterRequirement  float64 `json:"water_requirement"`   // liters/ha/day
	RecommendedMethod string  `json:"recommended_method"`
	ScheduleNote      string  `json:"schedule_note,omitempty"`
}

// EnergyProfile is the energy model payload
type EnergyProfile struct {
	Efficiency      float64 `json:"efficiency"`       // 0-100
	SolarPotential  float64 `json:"solar_potential"`  // 0-100
	EstimatedSaving float64 `json:"estimated_saving"` // percent
}

// RiskOutlook is the risk model payload
type RiskOutlook struct {
	Level   float64  `json:"level"` // 0-100
	Factors []string `json:"factors,omitempty"`
}

// predictionEnvelope is the tagged union used for persistence. The kind
// discriminator decides which payload type the raw JSON decodes into.
type predictionEnvelope struct {
	Kind ModelKind       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalPrediction serializes a result payload into a tagged envelope
func MarshalPrediction(r *ModelResult) ([]byte, error) {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s prediction: %w", r.Kind, err)
	}
	return json.Marshal(predictionEnvelope{Kind: r.Kind, Data: data})
}

// UnmarshalPrediction decodes a tagged envelope into the typed payload
// for its kind. Unknown kinds are rejected at the persistence boundary.
func UnmarshalPrediction(raw []byte) (ModelKind, interface{}, error) {
	var env predictionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("invalid prediction envelope: %w", err)
	}

	var payload interface{}
	switch env.Kind {
	case KindWeather:
		payload = &WeatherOutlook{}
	case KindSoil:
		payload = &SoilAssessment{}
	case KindCrop:
		payload = &CropSuitability{}
	case KindIrrigation:
		payload = &IrrigationPlan{}
	case KindEnergy:
		payload = &EnergyProfile{}
	case KindRisk:
		payload = &RiskOutlook{}
	default:
		return "", nil, fmt.Errorf("unknown prediction kind: %q", env.Kind)
	}

	if err := json.Unmarshal(env.Data, payload); err != nil {
		return "", nil, fmt.Errorf("invalid %s prediction payload: %w", env.Kind, err)
	}
	return env.Kind, payload, nil
}
