package config

import (
	"fmt"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/models"
)

// ThresholdLevels converts the configured ladder entries into domain
// threshold levels. An empty config section yields an empty slice;
// callers fall back to the built-in ladder in that case. Invalid
// entries make the whole set unusable so the caller falls back rather
// than running with a partial ladder.
func (a AlertsConfig) ThresholdLevels() ([]models.ThresholdLevel, error) {
	if len(a.Thresholds) == 0 {
		return nil, nil
	}

	validTypes := make(map[string]models.AlertType)
	for _, t := range models.AllAlertTypes() {
		validTypes[string(t)] = t
	}
	validLevels := make(map[string]models.AlertLevel)
	for _, l := range models.AlertLevels() {
		validLevels[string(l)] = l
	}

	out := make([]models.ThresholdLevel, 0, len(a.Thresholds))
	for _, entry := range a.Thresholds {
		alertType, ok := validTypes[entry.Type]
		if !ok {
			return nil, fmt.Errorf("unknown alert type in thresholds: %q", entry.Type)
		}
		level, ok := validLevels[entry.Level]
		if !ok {
			return nil, fmt.Errorf("unknown alert level in thresholds: %q", entry.Level)
		}
		out = append(out, models.ThresholdLevel{
			Type:  alertType,
			Level: level,
			Value: entry.Value,
			Unit:  entry.Unit,
		})
	}
	return out, nil
}

// TTLDurations maps the configured per-type expiry durations onto
// domain alert types. Unknown type names are rejected.
func (a AlertsConfig) TTLDurations() (map[models.AlertType]time.Duration, error) {
	if len(a.TTL) == 0 {
		return nil, nil
	}

	validTypes := make(map[string]models.AlertType)
	for _, t := range models.AllAlertTypes() {
		validTypes[string(t)] = t
	}

	out := make(map[models.AlertType]time.Duration, len(a.TTL))
	for name, d := range a.TTL {
		alertType, ok := validTypes[name]
		if !ok {
			return nil, fmt.Errorf("unknown alert type in ttl config: %q", name)
		}
		if d <= 0 {
			return nil, fmt.Errorf("non-positive ttl for alert type %q", name)
		}
		out[alertType] = d
	}
	return out, nil
}
