package alerting

import (
	"fmt"
	"sort"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Ladder holds the ordered severity cutoffs per alert type. A reading
// meeting or exceeding a rung triggers that rung's level; the highest
// crossed rung wins.
type Ladder struct {
	rungs map[models.AlertType][]models.ThresholdLevel
}

// NewLadder validates and indexes a threshold set. Per type, values
// must be strictly increasing from low to critical.
func NewLadder(levels []models.ThresholdLevel) (*Ladder, error) {
	rungs := make(map[models.AlertType][]models.ThresholdLevel)
	for _, level := range levels {
		rungs[level.Type] = append(rungs[level.Type], level)
	}

	for alertType, ladder := range rungs {
		sort.Slice(ladder, func(i, j int) bool {
			return ladder[i].Level.Rank() < ladder[j].Level.Rank()
		})
		for i := 1; i < len(ladder); i++ {
			if ladder[i].Level.Rank() == ladder[i-1].Level.Rank() {
				return nil, fmt.Errorf("duplicate %s threshold for %s", ladder[i].Level, alertType)
			}
			if ladder[i].Value <= ladder[i-1].Value {
				return nil, fmt.Errorf(
					"%s thresholds must be strictly increasing: %s=%.2f, %s=%.2f",
					alertType, ladder[i-1].Level, ladder[i-1].Value, ladder[i].Level, ladder[i].Value,
				)
			}
		}
		rungs[alertType] = ladder
	}

	return &Ladder{rungs: rungs}, nil
}

// DefaultLadder is the built-in threshold set used when no valid
// configuration is supplied. Cold readings are evaluated as degrees
// below zero and drought as soil moisture deficit below 50%, so the
// meets-or-exceeds rule applies uniformly.
func DefaultLadder() *Ladder {
	ladder, err := NewLadder([]models.ThresholdLevel{
		{Type: models.AlertFlood, Level: models.LevelLow, Value: 5, Unit: "mm/h"},
		{Type: models.AlertFlood, Level: models.LevelMedium, Value: 10, Unit: "mm/h"},
		{Type: models.AlertFlood, Level: models.LevelHigh, Value: 20, Unit: "mm/h"},
		{Type: models.AlertFlood, Level: models.LevelCritical, Value: 50, Unit: "mm/h"},

		{Type: models.AlertHeat, Level: models.LevelLow, Value: 32, Unit: "C"},
		{Type: models.AlertHeat, Level: models.LevelMedium, Value: 36, Unit: "C"},
		{Type: models.AlertHeat, Level: models.LevelHigh, Value: 40, Unit: "C"},
		{Type: models.AlertHeat, Level: models.LevelCritical, Value: 45, Unit: "C"},

		{Type: models.AlertCold, Level: models.LevelLow, Value: 0, Unit: "C below zero"},
		{Type: models.AlertCold, Level: models.LevelMedium, Value: 3, Unit: "C below zero"},
		{Type: models.AlertCold, Level: models.LevelHigh, Value: 6, Unit: "C below zero"},
		{Type: models.AlertCold, Level: models.LevelCritical, Value: 10, Unit: "C below zero"},

		{Type: models.AlertWind, Level: models.LevelLow, Value: 40, Unit: "km/h"},
		{Type: models.AlertWind, Level: models.LevelMedium, Value: 60, Unit: "km/h"},
		{Type: models.AlertWind, Level: models.LevelHigh, Value: 80, Unit: "km/h"},
		{Type: models.AlertWind, Level: models.LevelCritical, Value: 100, Unit: "km/h"},

		{Type: models.AlertDrought, Level: models.LevelLow, Value: 10, Unit: "% deficit"},
		{Type: models.AlertDrought, Level: models.LevelMedium, Value: 20, Unit: "% deficit"},
		{Type: models.AlertDrought, Level: models.LevelHigh, Value: 30, Unit: "% deficit"},
		{Type: models.AlertDrought, Level: models.LevelCritical, Value: 40, Unit: "% deficit"},
	})
	if err != nil {
		// The built-in set is static and valid; failure here is a bug
		panic(err)
	}
	return ladder
}

// Evaluate returns the highest level whose threshold the value meets
// or exceeds, or false when the value stays below the lowest rung.
func (l *Ladder) Evaluate(alertType models.AlertType, value float64) (models.AlertLevel, bool) {
	ladder := l.rungs[alertType]
	var crossed models.AlertLevel
	found := false
	for _, rung := range ladder {
		if value >= rung.Value {
			crossed = rung.Level
			found = true
		}
	}
	return crossed, found
}

// Unit returns the measurement unit for an alert type
func (l *Ladder) Unit(alertType models.AlertType) string {
	ladder := l.rungs[alertType]
	if len(ladder) == 0 {
		return ""
	}
	return ladder[0].Unit
}

// Types lists the alert types this ladder covers, in stable order
func (l *Ladder) Types() []models.AlertType {
	var out []models.AlertType
	for _, t := range models.AllAlertTypes() {
		if len(l.rungs[t]) > 0 {
			out = append(out, t)
		}
	}
	return out
}
