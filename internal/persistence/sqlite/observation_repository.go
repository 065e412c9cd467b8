package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/internship-tracker/internal/persistence"
)

// ObservationRepository implements persistence.ObservationRepository using SQLite.
type ObservationRepository struct {
	gateway *Gateway
}

// NewObservationRepository creates a new SQLite observation repository.
func NewObservationRepository(gateway *Gateway) *ObservationRepository {
	return &ObservationRepository{gateway: gateway}
}

// CreateObservation inserts an observation and returns the assigned identifier.
func (r *ObservationRepository) CreateObservation(ctx context.Context, observation persistence.Observation) (int64, error) {
	if observation.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"INSERT INTO observations (intern_id, observation, last_update) VALUES (?, ?, ?)",
		observation.InternID,
		observation.Text,
		nullString(formatTimestamp(observation.LastUpdate)),
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// UpdateObservation overwrites an observation.
func (r *ObservationRepository) UpdateObservation(ctx context.Context, observation persistence.Observation) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"UPDATE observations SET intern_id = ?, observation = ?, last_update = ? WHERE id = ?",
		observation.InternID,
		observation.Text,
		nullString(formatTimestamp(observation.LastUpdate)),
		observation.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteObservation removes an observation.
func (r *ObservationRepository) DeleteObservation(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM observations WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetObservation retrieves an observation by identifier.
func (r *ObservationRepository) GetObservation(ctx context.Context, id int64) (persistence.Observation, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT id, intern_id, observation, last_update FROM observations WHERE id = ?", id)
	return scanObservation(row)
}

// ListObservationsByIntern returns an intern's observations, newest first.
func (r *ObservationRepository) ListObservationsByIntern(ctx context.Context, internID int64) ([]persistence.Observation, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx, `
		SELECT id, intern_id, observation, last_update FROM observations
		WHERE intern_id = ? ORDER BY last_update DESC, id DESC`, internID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var observations []persistence.Observation
	for rows.Next() {
		observation, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, observation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return observations, nil
}

func scanObservation(row rowScanner) (persistence.Observation, error) {
	var observation persistence.Observation
	var lastUpdate sql.NullString
	if err := row.Scan(&observation.ID, &observation.InternID, &observation.Text, &lastUpdate); err != nil {
		return persistence.Observation{}, mapError(err)
	}
	ts, err := parseTimestamp(lastUpdate)
	if err != nil {
		return persistence.Observation{}, err
	}
	observation.LastUpdate = ts
	return observation, nil
}
