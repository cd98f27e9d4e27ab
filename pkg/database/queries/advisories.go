package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/database"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

var ErrAdvisoryNotFound = errors.New("advisory not found")

type AdvisoryRepository struct {
	db *database.DB
}

func NewAdvisoryRepository(db *database.DB) *AdvisoryRepository {
	return &AdvisoryRepository{db: db}
}

// advisoryPayload holds the derived sections of an advisory. Model
// results are stored separately as tagged envelopes so reads validate
// payloads against their kind.
type advisoryPayload struct {
	Actions        []models.ActionItem          `json:"actions"`
	Risk           models.RiskAssessment        `json:"risk"`
	Sustainability models.SustainabilityMetrics `json:"sustainability"`
	Economics      models.EconomicForecast      `json:"economics"`
}

type resultRecord struct {
	Kind        models.ModelKind `json:"kind"`
	ModelName   string           `json:"model_name"`
	Confidence  float64          `json:"confidence"`
	GeneratedAt time.Time        `json:"generated_at"`
	Placeholder bool             `json:"placeholder,omitempty"`
	Prediction  json.RawMessage  `json:"prediction,omitempty"`
}

func (r *AdvisoryRepository) Insert(ctx context.Context, advisory *models.Advisory) error {
	payload, err := json.Marshal(advisoryPayload{
		Actions:        advisory.Actions,
		Risk:           advisory.Risk,
		Sustainability: advisory.Sustainability,
		Economics:      advisory.Economics,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal advisory payload: %w", err)
	}

	results, err := encodeResults(advisory.Results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO advisories
			(id, location_id, overall_score, overall_confidence, degraded, payload, results, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		advisory.ID,
		advisory.LocationID,
		advisory.OverallScore,
		advisory.OverallConfidence,
		advisory.Degraded,
		payload,
		results,
		advisory.GeneratedAt,
	)
	return err
}

// GetLatest returns the most recent advisory for a location
func (r *AdvisoryRepository) GetLatest(ctx context.Context, locationID string) (*models.Advisory, error) {
	query := `
		SELECT id, location_id, overall_score, overall_confidence, degraded, payload, results, generated_at
		FROM advisories
		WHERE location_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	advisory, err := scanAdvisory(r.db.QueryRowContext(ctx, query, locationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdvisoryNotFound
	}
	return advisory, err
}

func (r *AdvisoryRepository) GetRecent(ctx context.Context, locationID string, limit int) ([]*models.Advisory, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, location_id, overall_score, overall_confidence, degraded, payload, results, generated_at
		FROM advisories
		WHERE location_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advisories []*models.Advisory
	for rows.Next() {
		advisory, err := scanAdvisory(rows)
		if err != nil {
			return nil, err
		}
		advisories = append(advisories, advisory)
	}
	return advisories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdvisory(row rowScanner) (*models.Advisory, error) {
	var (
		advisory     models.Advisory
		payloadBytes []byte
		resultBytes  []byte
	)

	err := row.Scan(
		&advisory.ID,
		&advisory.LocationID,
		&advisory.OverallScore,
		&advisory.OverallConfidence,
		&advisory.Degraded,
		&payloadBytes,
		&resultBytes,
		&advisory.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}

	var payload advisoryPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("invalid advisory payload: %w", err)
	}
	advisory.Actions = payload.Actions
	advisory.Risk = payload.Risk
	advisory.Sustainability = payload.Sustainability
	advisory.Economics = payload.Economics

	if len(resultBytes) > 0 {
		results, err := decodeResults(resultBytes)
		if err != nil {
			return nil, err
		}
		advisory.Results = results
	}
	return &advisory, nil
}

func encodeResults(results []*models.ModelResult) ([]byte, error) {
	if len(results) == 0 {
		return nil, nil
	}

	records := make([]resultRecord, 0, len(results))
	for _, r := range results {
		rec := resultRecord{
			Kind:        r.Kind,
			ModelName:   r.ModelName,
			Confidence:  r.Confidence,
			GeneratedAt: r.GeneratedAt,
			Placeholder: r.Placeholder,
		}
		if !r.Placeholder && r.Data != nil {
			prediction, err := models.MarshalPrediction(r)
			if err != nil {
				return nil, err
			}
			rec.Prediction = prediction
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

func decodeResults(raw []byte) ([]*models.ModelResult, error) {
	var records []resultRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("invalid result records: %w", err)
	}

	results := make([]*models.ModelResult, 0, len(records))
	for _, rec := range records {
		result := &models.ModelResult{
			Kind:        rec.Kind,
			ModelName:   rec.ModelName,
			Confidence:  rec.Confidence,
			GeneratedAt: rec.GeneratedAt,
			Placeholder: rec.Placeholder,
		}
		if len(rec.Prediction) > 0 {
			kind, payload, err := models.UnmarshalPrediction(rec.Prediction)
			if err != nil {
				return nil, err
			}
			if kind != rec.Kind {
				return nil, fmt.Errorf("prediction kind mismatch: record %s, envelope %s", rec.Kind, kind)
			}
			result.Data = payload
		}
		results = append(results, result)
	}
	return results, nil
}
