package alerting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/agro-advisor/internal/alerting"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

func TestLadder_Evaluate_MeetsOrExceeds(t *testing.T) {
	ladder := alerting.DefaultLadder()

	tests := []struct {
		name          string
		alertType     models.AlertType
		value         float64
		expectCrossed bool
		expectedLevel models.AlertLevel
	}{
		{
			name:          "rainfall below lowest rung",
			alertType:     models.AlertFlood,
			value:         4.9,
			expectCrossed: false,
		},
		{
			name:          "rainfall exactly at lowest rung",
			alertType:     models.AlertFlood,
			value:         5.0,
			expectCrossed: true,
			expectedLevel: models.LevelLow,
		},
		{
			name:          "rainfall between rungs takes highest crossed",
			alertType:     models.AlertFlood,
			value:         22.0,
			expectCrossed: true,
			expectedLevel: models.LevelHigh,
		},
		{
			name:          "rainfall at top rung",
			alertType:     models.AlertFlood,
			value:         50.0,
			expectCrossed: true,
			expectedLevel: models.LevelCritical,
		},
		{
			name:          "heat at medium rung",
			alertType:     models.AlertHeat,
			value:         36.0,
			expectCrossed: true,
			expectedLevel: models.LevelMedium,
		},
		{
			name:          "cold reading in degrees below zero",
			alertType:     models.AlertCold,
			value:         7.0,
			expectCrossed: true,
			expectedLevel: models.LevelHigh,
		},
		{
			name:          "drought deficit below first rung",
			alertType:     models.AlertDrought,
			value:         9.9,
			expectCrossed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, crossed := ladder.Evaluate(tt.alertType, tt.value)

			assert.Equal(t, tt.expectCrossed, crossed)
			if tt.expectCrossed {
				assert.Equal(t, tt.expectedLevel, level)
			}
		})
	}
}

func TestNewLadder_RejectsNonIncreasingValues(t *testing.T) {
	_, err := alerting.NewLadder([]models.ThresholdLevel{
		{Type: models.AlertFlood, Level: models.LevelLow, Value: 10, Unit: "mm/h"},
		{Type: models.AlertFlood, Level: models.LevelMedium, Value: 10, Unit: "mm/h"},
	})
	assert.Error(t, err)
}

func TestNewLadder_RejectsDuplicateLevels(t *testing.T) {
	_, err := alerting.NewLadder([]models.ThresholdLevel{
		{Type: models.AlertHeat, Level: models.LevelLow, Value: 30, Unit: "C"},
		{Type: models.AlertHeat, Level: models.LevelLow, Value: 35, Unit: "C"},
	})
	assert.Error(t, err)
}

func TestNewLadder_PartialLadderStillEvaluates(t *testing.T) {
	ladder, err := alerting.NewLadder([]models.ThresholdLevel{
		{Type: models.AlertWind, Level: models.LevelMedium, Value: 60, Unit: "km/h"},
		{Type: models.AlertWind, Level: models.LevelCritical, Value: 100, Unit: "km/h"},
	})
	require.NoError(t, err)

	level, crossed := ladder.Evaluate(models.AlertWind, 75)
	assert.True(t, crossed)
	assert.Equal(t, models.LevelMedium, level)

	_, crossed = ladder.Evaluate(models.AlertWind, 50)
	assert.False(t, crossed)
}
