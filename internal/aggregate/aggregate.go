package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Default values substituted when a contributing model result is
// absent. Aggregation is total: it never fails on missing inputs.
const (
	DefaultScore      = 70
	DefaultConfidence = 0.75
)

// Risk bucket breakpoints on the 0-100 scale
const (
	riskVeryLowMax = 20.0
	riskLowMax     = 40.0
	riskMediumMax  = 60.0
	riskHighMax    = 80.0
)

// Aggregator turns a bag of model results into a consolidated
// advisory. Pure and deterministic: no I/O, no randomness, same
// inputs always produce the same advisory apart from timestamps.
type Aggregator struct{}

func New() *Aggregator {
	return &Aggregator{}
}

// ResultSet indexes model results by kind. Placeholder results are
// carried for shape but excluded from every computation.
type ResultSet map[models.ModelKind]*models.ModelResult

func (rs ResultSet) soil() *models.SoilAssessment {
	if r, ok := rs[models.KindSoil]; ok && !r.Placeholder {
		if a, ok := r.Data.(*models.SoilAssessment); ok {
			return a
		}
	}
	return nil
}

func (rs ResultSet) weather() *models.WeatherOutlook {
	if r, ok := rs[models.KindWeather]; ok && !r.Placeholder {
		if w, ok := r.Data.(*models.WeatherOutlook); ok {
			return w
		}
	}
	return nil
}

func (rs ResultSet) crop() *models.CropSuitability {
	if r, ok := rs[models.KindCrop]; ok && !r.Placeholder {
		if c, ok := r.Data.(*models.CropSuitability); ok {
			return c
		}
	}
	return nil
}

func (rs ResultSet) irrigation() *models.IrrigationPlan {
	if r, ok := rs[models.KindIrrigation]; ok && !r.Placeholder {
		if p, ok := r.Data.(*models.IrrigationPlan); ok {
			return p
		}
	}
	return nil
}

func (rs ResultSet) energy() *models.EnergyProfile {
	if r, ok := rs[models.KindEnergy]; ok && !r.Placeholder {
		if e, ok := r.Data.(*models.EnergyProfile); ok {
			return e
		}
	}
	return nil
}

func (rs ResultSet) risk() *models.RiskOutlook {
	if r, ok := rs[models.KindRisk]; ok && !r.Placeholder {
		if o, ok := r.Data.(*models.RiskOutlook); ok {
			return o
		}
	}
	return nil
}

// Build assembles the advisory for one analysis run
func (a *Aggregator) Build(locationID string, results ResultSet) *models.Advisory {
	advisory := &models.Advisory{
		ID:                models.NewUUID(),
		LocationID:        locationID,
		OverallScore:      a.OverallScore(results),
		OverallConfidence: a.OverallConfidence(results),
		Actions:           a.ActionPriorities(results),
		Risk:              a.AssessRisk(results),
		Sustainability:    a.Sustainability(results),
		Economics:         a.Economics(results),
		GeneratedAt:       time.Now(),
	}

	for _, kind := range models.AllKinds() {
		if r, ok := results[kind]; ok {
			advisory.Results = append(advisory.Results, r)
			if r.Placeholder {
				advisory.Degraded = true
			}
		}
	}
	return advisory
}

// OverallScore averages whichever sub-scores are present: soil
// health, irrigation efficiency x100, energy efficiency, mean crop
// suitability. Falls back to DefaultScore when none are.
func (a *Aggregator) OverallScore(results ResultSet) int {
	var parts []float64

	if soil := results.soil(); soil != nil {
		parts = append(parts, soil.HealthScore)
	}
	if irr := results.irrigation(); irr != nil {
		parts = append(parts, irr.Efficiency*100)
	}
	if energy := results.energy(); energy != nil {
		parts = append(parts, energy.Efficiency)
	}
	if crop := results.crop(); crop != nil && len(crop.Scores) > 0 {
		parts = append(parts, crop.AverageScore())
	}

	if len(parts) == 0 {
		return DefaultScore
	}

	var total float64
	for _, p := range parts {
		total += p
	}
	return int(math.Round(clamp(total / float64(len(parts)))))
}

// OverallConfidence averages the confidence of every present
// (non-placeholder) result, defaulting to DefaultConfidence.
func (a *Aggregator) OverallConfidence(results ResultSet) float64 {
	var total float64
	var count int
	for _, r := range results {
		if r == nil || r.Placeholder {
			continue
		}
		total += r.Confidence
		count++
	}
	if count == 0 {
		return DefaultConfidence
	}
	c := total / float64(count)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ActionPriorities evaluates the recommendation rules in a fixed
// order, then stable-sorts descending by priority rank so ties keep
// rule-evaluation order.
func (a *Aggregator) ActionPriorities(results ResultSet) []models.ActionItem {
	var actions []models.ActionItem

	if soil := results.soil(); soil != nil {
		if soil.HealthScore < 40 {
			actions = append(actions, models.ActionItem{
				Category:        "soil_management",
				Action:          "apply organic matter and schedule a full soil test",
				Priority:        models.PriorityCritical,
				EstimatedImpact: "restore soil productivity",
				Cost:            "medium",
				Feasibility:     "high",
			})
		} else if soil.HealthScore < 60 {
			actions = append(actions, models.ActionItem{
				Category:        "soil_management",
				Action:          "apply targeted soil amendments",
				Priority:        models.PriorityHigh,
				EstimatedImpact: "improve soil health score",
				Cost:            "low",
				Feasibility:     "high",
			})
		}
		if soil.ErosionRisk >= 60 {
			actions = append(actions, models.ActionItem{
				Category:        "soil_management",
				Action:          "install erosion control measures on exposed plots",
				Priority:        models.PriorityHigh,
				EstimatedImpact: "prevent topsoil loss",
				Cost:            "medium",
				Feasibility:     "medium",
			})
		}
	}

	if irr := results.irrigation(); irr != nil {
		if irr.Efficiency < 0.5 {
			actions = append(actions, models.ActionItem{
				Category:        "irrigation",
				Action:          "switch to " + irr.RecommendedMethod + " irrigation",
				Priority:        models.PriorityHigh,
				EstimatedImpact: "reduce water consumption",
				Cost:            "high",
				Feasibility:     "medium",
			})
		} else if irr.WaterRequirement > 0 {
			actions = append(actions, models.ActionItem{
				Category:        "irrigation",
				Action:          "follow the computed irrigation schedule",
				Priority:        models.PriorityMedium,
				EstimatedImpact: "maintain crop water supply",
				Cost:            "low",
				Feasibility:     "high",
			})
		}
	}

	if crop := results.crop(); crop != nil {
		if len(crop.Scores) > 0 && crop.AverageScore() < 50 {
			actions = append(actions, models.ActionItem{
				Category:        "crop_selection",
				Action:          "re-evaluate crop mix for forecast conditions",
				Priority:        models.PriorityHigh,
				EstimatedImpact: "avoid poor-yield planting",
				Cost:            "low",
				Feasibility:     "medium",
			})
		} else if len(crop.Recommended) > 0 {
			actions = append(actions, models.ActionItem{
				Category:        "crop_selection",
				Action:          "prioritize recommended crops for the coming cycle",
				Priority:        models.PriorityLow,
				EstimatedImpact: "capture suitability upside",
				Cost:            "low",
				Feasibility:     "high",
			})
		}
	}

	if energy := results.energy(); energy != nil {
		if energy.Efficiency < 60 {
			actions = append(actions, models.ActionItem{
				Category:        "energy",
				Action:          "service pumps and shift loads off peak hours",
				Priority:        models.PriorityMedium,
				EstimatedImpact: "cut energy cost",
				Cost:            "low",
				Feasibility:     "high",
			})
		}
		if energy.SolarPotential >= 70 {
			actions = append(actions, models.ActionItem{
				Category:        "energy",
				Action:          "evaluate solar pumping for the season",
				Priority:        models.PriorityLow,
				EstimatedImpact: "long-term cost reduction",
				Cost:            "high",
				Feasibility:     "medium",
			})
		}
	}

	if risk := results.risk(); risk != nil && risk.Level >= 60 {
		priority := models.PriorityHigh
		if risk.Level >= 80 {
			priority = models.PriorityCritical
		}
		actions = append(actions, models.ActionItem{
			Category:        "risk_mitigation",
			Action:          "activate hazard response plan",
			Priority:        priority,
			EstimatedImpact: "protect crops and equipment",
			Cost:            "medium",
			Feasibility:     "high",
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority.Rank() > actions[j].Priority.Rank()
	})
	return actions
}

// AssessRisk takes the worst case across all contributing rules
func (a *Aggregator) AssessRisk(results ResultSet) models.RiskAssessment {
	score := 0.0
	var factors []string

	propose := func(level float64, factor string) {
		if level > score {
			score = level
		}
		if factor != "" {
			factors = append(factors, factor)
		}
	}

	if risk := results.risk(); risk != nil {
		if risk.Level > score {
			score = risk.Level
		}
		factors = append(factors, risk.Factors...)
	}
	if soil := results.soil(); soil != nil && soil.ErosionRisk >= 40 {
		propose(soil.ErosionRisk, "elevated soil erosion risk")
	}
	if weather := results.weather(); weather != nil && weather.HorizonDays > 0 {
		if daily := weather.ExpectedRainfall / float64(weather.HorizonDays); daily > 30 {
			propose(clamp(daily*1.5), "heavy rainfall in forecast")
		}
	}

	return models.RiskAssessment{
		Level:   bucketRisk(score),
		Score:   clamp(score),
		Factors: factors,
	}
}

func bucketRisk(score float64) models.RiskLevel {
	switch {
	case score < riskVeryLowMax:
		return models.RiskVeryLow
	case score < riskLowMax:
		return models.RiskLow
	case score < riskMediumMax:
		return models.RiskMedium
	case score < riskHighMax:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// Sustainability combines sub-scores with fixed weights
// (water 0.4, soil 0.3, energy 0.3), clamped to [0,100].
func (a *Aggregator) Sustainability(results ResultSet) models.SustainabilityMetrics {
	water := float64(DefaultScore)
	soilCons := float64(DefaultScore)
	energyScore := float64(DefaultScore)

	if irr := results.irrigation(); irr != nil {
		water = clamp(irr.Efficiency * 100)
	}
	if soil := results.soil(); soil != nil {
		soilCons = clamp(100 - soil.ErosionRisk)
	}
	if energy := results.energy(); energy != nil {
		energyScore = clamp(energy.Efficiency)
	}

	return models.SustainabilityMetrics{
		WaterEfficiency:  water,
		SoilConservation: soilCons,
		EnergyScore:      energyScore,
		OverallIndex:     clamp(water*0.4 + soilCons*0.3 + energyScore*0.3),
	}
}

// Economics projects yield and cost with fixed weights
// (yield: crop 0.5, soil 0.3, irrigation 0.2), clamped to [0,100].
func (a *Aggregator) Economics(results ResultSet) models.EconomicForecast {
	cropScore := float64(DefaultScore)
	soilScore := float64(DefaultScore)
	irrScore := float64(DefaultScore)
	saving := 0.0

	if crop := results.crop(); crop != nil && len(crop.Scores) > 0 {
		cropScore = clamp(crop.AverageScore())
	}
	if soil := results.soil(); soil != nil {
		soilScore = clamp(soil.HealthScore)
	}
	if irr := results.irrigation(); irr != nil {
		irrScore = clamp(irr.Efficiency * 100)
	}
	if energy := results.energy(); energy != nil {
		saving = clamp(energy.EstimatedSaving)
	}

	yield := clamp(cropScore*0.5 + soilScore*0.3 + irrScore*0.2)
	cost := clamp(80 - irrScore*0.4 - saving*0.4)

	return models.EconomicForecast{
		YieldOutlook:       yield,
		CostPressure:       cost,
		ProfitabilityIndex: clamp(yield*0.6 + (100-cost)*0.4),
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
