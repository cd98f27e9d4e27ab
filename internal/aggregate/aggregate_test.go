package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/aggregate"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func result(kind models.ModelKind, confidence float64, data interface{}) *models.ModelResult {
	return &models.ModelResult{
		Kind:        kind,
		ModelName:   string(kind),
		Confidence:  confidence,
		GeneratedAt: time.Now(),
		Data:        data,
	}
}

func placeholder(kind models.ModelKind) *models.ModelResult {
	return &models.ModelResult{
		Kind:        kind,
		ModelName:   string(kind),
		Confidence:  0.1,
		GeneratedAt: time.Now(),
		Placeholder: true,
	}
}

func TestOverallScore_EmptyResultsUsesDefault(t *testing.T) {
	agg := aggregate.New()

	assert.Equal(t, aggregate.DefaultScore, agg.OverallScore(aggregate.ResultSet{}))
	assert.InDelta(t, aggregate.DefaultConfidence, agg.OverallConfidence(aggregate.ResultSet{}), 0.001)
}

func TestOverallScore_AveragesPresentSubScores(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindSoil:       result(models.KindSoil, 0.9, &models.SoilAssessment{HealthScore: 80}),
		models.KindIrrigation: result(models.KindIrrigation, 0.8, &models.IrrigationPlan{Efficiency: 0.6}),
	}

	// (80 + 60) / 2
	assert.Equal(t, 70, agg.OverallScore(results))
}

func TestOverallScore_IgnoresPlaceholders(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindSoil:   result(models.KindSoil, 0.9, &models.SoilAssessment{HealthScore: 40}),
		models.KindEnergy: placeholder(models.KindEnergy),
	}

	assert.Equal(t, 40, agg.OverallScore(results))
	assert.InDelta(t, 0.9, agg.OverallConfidence(results), 0.001)
}

func TestBuild_PlaceholderMarksDegraded(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindSoil: result(models.KindSoil, 0.9, &models.SoilAssessment{HealthScore: 75}),
		models.KindRisk: placeholder(models.KindRisk),
	}

	advisory := agg.Build("delhi", results)
	require.NotNil(t, advisory)
	assert.True(t, advisory.Degraded)
	assert.Equal(t, "delhi", advisory.LocationID)
	assert.NotEmpty(t, advisory.ID)
	assert.Len(t, advisory.Results, 2)
}

func TestBuild_SoilOnlyScenario(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindSoil: result(models.KindSoil, 0.9, &models.SoilAssessment{HealthScore: 55}),
	}

	advisory := agg.Build("delhi", results)
	assert.Equal(t, 55, advisory.OverallScore)
	assert.InDelta(t, 0.9, advisory.OverallConfidence, 0.001)
	assert.False(t, advisory.Degraded)

	require.NotEmpty(t, advisory.Actions)
	assert.Equal(t, "soil_management", advisory.Actions[0].Category)
	assert.Equal(t, models.PriorityHigh, advisory.Actions[0].Priority)
}

func TestActionPriorities_SortedDescendingAndStable(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindSoil: result(models.KindSoil, 0.9, &models.SoilAssessment{
			HealthScore: 35, // critical soil action
			ErosionRisk: 70, // high erosion action
		}),
		models.KindIrrigation: result(models.KindIrrigation, 0.8, &models.IrrigationPlan{
			Efficiency:        0.8,
			WaterRequirement:  1200, // medium schedule action
			RecommendedMethod: "drip",
		}),
		models.KindRisk: result(models.KindRisk, 0.7, &models.RiskOutlook{Level: 85}), // critical risk action
	}

	actions := agg.ActionPriorities(results)
	require.Len(t, actions, 4)

	assert.Equal(t, models.PriorityCritical, actions[0].Priority)
	assert.Equal(t, models.PriorityCritical, actions[1].Priority)
	// Stable sort keeps rule evaluation order among equal priorities:
	// soil rules run before risk rules.
	assert.Equal(t, "soil_management", actions[0].Category)
	assert.Equal(t, "risk_mitigation", actions[1].Category)
	assert.Equal(t, models.PriorityHigh, actions[2].Priority)
	assert.Equal(t, models.PriorityMedium, actions[3].Priority)
}

func TestActionPriorities_LowEfficiencyIrrigationRecommendsSwitch(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindIrrigation: result(models.KindIrrigation, 0.8, &models.IrrigationPlan{
			Efficiency:        0.4,
			RecommendedMethod: "drip",
		}),
	}

	actions := agg.ActionPriorities(results)
	require.Len(t, actions, 1)
	assert.Equal(t, models.PriorityHigh, actions[0].Priority)
	assert.Contains(t, actions[0].Action, "drip")
}

func TestAssessRisk_WorstCaseWins(t *testing.T) {
	agg := aggregate.New()

	tests := []struct {
		name          string
		results       aggregate.ResultSet
		expectedLevel models.RiskLevel
		minFactors    int
	}{
		{
			name:          "no inputs is very low",
			results:       aggregate.ResultSet{},
			expectedLevel: models.RiskVeryLow,
		},
		{
			name: "risk model drives the level",
			results: aggregate.ResultSet{
				models.KindRisk: result(models.KindRisk, 0.7, &models.RiskOutlook{
					Level:   65,
					Factors: []string{"monsoon onset"},
				}),
			},
			expectedLevel: models.RiskHigh,
			minFactors:    1,
		},
		{
			name: "erosion outranks a mild risk outlook",
			results: aggregate.ResultSet{
				models.KindRisk: result(models.KindRisk, 0.7, &models.RiskOutlook{Level: 25}),
				models.KindSoil: result(models.KindSoil, 0.9, &models.SoilAssessment{
					HealthScore: 70,
					ErosionRisk: 82,
				}),
			},
			expectedLevel: models.RiskCritical,
			minFactors:    1,
		},
		{
			name: "heavy forecast rainfall contributes",
			results: aggregate.ResultSet{
				models.KindWeather: result(models.KindWeather, 0.85, &models.WeatherOutlook{
					HorizonDays:      7,
					ExpectedRainfall: 245, // 35mm/day, scores 52.5
				}),
			},
			expectedLevel: models.RiskMedium,
			minFactors:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := agg.AssessRisk(tt.results)
			assert.Equal(t, tt.expectedLevel, risk.Level)
			assert.GreaterOrEqual(t, len(risk.Factors), tt.minFactors)
			assert.LessOrEqual(t, risk.Score, 100.0)
		})
	}
}

func TestSustainability_WeightedIndex(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindIrrigation: result(models.KindIrrigation, 0.8, &models.IrrigationPlan{Efficiency: 0.9}),
		models.KindSoil:       result(models.KindSoil, 0.9, &models.SoilAssessment{ErosionRisk: 20}),
		models.KindEnergy:     result(models.KindEnergy, 0.7, &models.EnergyProfile{Efficiency: 60}),
	}

	s := agg.Sustainability(results)
	assert.InDelta(t, 90.0, s.WaterEfficiency, 0.001)
	assert.InDelta(t, 80.0, s.SoilConservation, 0.001)
	assert.InDelta(t, 60.0, s.EnergyScore, 0.001)
	// 90*0.4 + 80*0.3 + 60*0.3
	assert.InDelta(t, 78.0, s.OverallIndex, 0.001)
}

func TestEconomics_DefaultsWithoutInputs(t *testing.T) {
	agg := aggregate.New()

	e := agg.Economics(aggregate.ResultSet{})
	// yield = 70*0.5 + 70*0.3 + 70*0.2 = 70
	assert.InDelta(t, 70.0, e.YieldOutlook, 0.001)
	// cost = 80 - 70*0.4 - 0
	assert.InDelta(t, 52.0, e.CostPressure, 0.001)
	// profitability = 70*0.6 + 48*0.4
	assert.InDelta(t, 61.2, e.ProfitabilityIndex, 0.001)
}

func TestEconomics_WeightedForecast(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindCrop: result(models.KindCrop, 0.8, &models.CropSuitability{
			Scores: map[string]float64{"wheat": 80, "rice": 60},
		}),
		models.KindSoil:       result(models.KindSoil, 0.9, &models.SoilAssessment{HealthScore: 50}),
		models.KindIrrigation: result(models.KindIrrigation, 0.8, &models.IrrigationPlan{Efficiency: 0.5}),
		models.KindEnergy:     result(models.KindEnergy, 0.7, &models.EnergyProfile{EstimatedSaving: 25}),
	}

	e := agg.Economics(results)
	// yield = 70*0.5 + 50*0.3 + 50*0.2 = 60
	assert.InDelta(t, 60.0, e.YieldOutlook, 0.001)
	// cost = 80 - 50*0.4 - 25*0.4 = 50
	assert.InDelta(t, 50.0, e.CostPressure, 0.001)
	// profitability = 60*0.6 + 50*0.4 = 56
	assert.InDelta(t, 56.0, e.ProfitabilityIndex, 0.001)
}

func TestOverallConfidence_ClampedToUnitInterval(t *testing.T) {
	agg := aggregate.New()
	results := aggregate.ResultSet{
		models.KindSoil: result(models.KindSoil, 1.4, &models.SoilAssessment{HealthScore: 70}),
	}

	assert.Equal(t, 1.0, agg.OverallConfidence(results))
}
