package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/OldStager01/agro-advisor/pkg/database"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

type AlertRepository struct {
	db *database.DB
}

func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts
			(id, location_id, type, level, triggering_value, unit, message, active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.LocationID,
		alert.Type,
		alert.Level,
		alert.TriggeringValue,
		alert.Unit,
		alert.Message,
		alert.Active,
		alert.CreatedAt,
		alert.ExpiresAt,
	)
	return err
}

func (r *AlertRepository) MarkInactive(ctx context.Context, alertID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alerts SET active = FALSE WHERE id = $1`, alertID)
	return err
}

// Supersede deactivates the previous alert and inserts its
// replacement in one transaction, so readers never see both active.
func (r *AlertRepository) Supersede(ctx context.Context, previousID string, current *models.Alert) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE alerts SET active = FALSE WHERE id = $1`, previousID); err != nil {
			return err
		}

		query := `
			INSERT INTO alerts
				(id, location_id, type, level, triggering_value, unit, message, active, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := tx.ExecContext(ctx, query,
			current.ID,
			current.LocationID,
			current.Type,
			current.Level,
			current.TriggeringValue,
			current.Unit,
			current.Message,
			current.Active,
			current.CreatedAt,
			current.ExpiresAt,
		)
		return err
	})
}

func (r *AlertRepository) GetActive(ctx context.Context) ([]models.Alert, error) {
	query := `
		SELECT id, location_id, type, level, triggering_value, unit, message, active, created_at, expires_at
		FROM alerts
		WHERE active
		ORDER BY created_at DESC`

	return r.queryAlerts(ctx, query)
}

func (r *AlertRepository) GetActiveByLocation(ctx context.Context, locationID string) ([]models.Alert, error) {
	query := `
		SELECT id, location_id, type, level, triggering_value, unit, message, active, created_at, expires_at
		FROM alerts
		WHERE active AND location_id = $1
		ORDER BY created_at DESC`

	return r.queryAlerts(ctx, query, locationID)
}

func (r *AlertRepository) GetHistory(ctx context.Context, locationID string, from, to time.Time, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, location_id, type, level, triggering_value, unit, message, active, created_at, expires_at
		FROM alerts
		WHERE location_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC
		LIMIT $4`

	return r.queryAlerts(ctx, query, locationID, from, to, limit)
}

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		err := rows.Scan(
			&a.ID, &a.LocationID, &a.Type, &a.Level,
			&a.TriggeringValue, &a.Unit, &a.Message,
			&a.Active, &a.CreatedAt, &a.ExpiresAt,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
