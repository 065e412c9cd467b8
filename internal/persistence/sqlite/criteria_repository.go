package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/internship-tracker/internal/persistence"
)

// CriteriaRepository implements persistence.CriteriaRepository using SQLite.
type CriteriaRepository struct {
	gateway *Gateway
}

// NewCriteriaRepository creates a new SQLite evaluation criteria repository.
func NewCriteriaRepository(gateway *Gateway) *CriteriaRepository {
	return &CriteriaRepository{gateway: gateway}
}

// CreateCriteria inserts a criterion and returns the assigned identifier.
func (r *CriteriaRepository) CreateCriteria(ctx context.Context, criteria persistence.EvaluationCriteria) (int64, error) {
	if criteria.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"INSERT INTO evaluation_criteria (name, description, weight) VALUES (?, ?, ?)",
		criteria.Name, nullString(criteria.Description), criteria.Weight,
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// UpdateCriteria overwrites a criterion.
func (r *CriteriaRepository) UpdateCriteria(ctx context.Context, criteria persistence.EvaluationCriteria) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"UPDATE evaluation_criteria SET name = ?, description = ?, weight = ? WHERE id = ?",
		criteria.Name, nullString(criteria.Description), criteria.Weight, criteria.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteCriteria removes a criterion.
func (r *CriteriaRepository) DeleteCriteria(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM evaluation_criteria WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetCriteria retrieves a criterion by identifier.
func (r *CriteriaRepository) GetCriteria(ctx context.Context, id int64) (persistence.EvaluationCriteria, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT id, name, description, weight FROM evaluation_criteria WHERE id = ?", id)
	return scanCriteria(row)
}

// ListCriteria returns all criteria in creation order.
func (r *CriteriaRepository) ListCriteria(ctx context.Context) ([]persistence.EvaluationCriteria, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx,
		"SELECT id, name, description, weight FROM evaluation_criteria ORDER BY id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var list []persistence.EvaluationCriteria
	for rows.Next() {
		criteria, err := scanCriteria(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, criteria)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

func scanCriteria(row rowScanner) (persistence.EvaluationCriteria, error) {
	var criteria persistence.EvaluationCriteria
	var description sql.NullString
	if err := row.Scan(&criteria.ID, &criteria.Name, &description, &criteria.Weight); err != nil {
		return persistence.EvaluationCriteria{}, mapError(err)
	}
	criteria.Description = description.String
	return criteria, nil
}
