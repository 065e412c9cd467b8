package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/internship-tracker/internal/persistence"
)

const gradeColumns = "id, intern_id, criteria_id, value, last_update"

// GradeRepository implements persistence.GradeRepository using SQLite.
type GradeRepository struct {
	gateway *Gateway
}

// NewGradeRepository creates a new SQLite grade repository.
func NewGradeRepository(gateway *Gateway) *GradeRepository {
	return &GradeRepository{gateway: gateway}
}

// CreateGrade inserts a grade and returns the assigned identifier.
func (r *GradeRepository) CreateGrade(ctx context.Context, grade persistence.Grade) (int64, error) {
	if grade.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"INSERT INTO grades (intern_id, criteria_id, value, last_update) VALUES (?, ?, ?, ?)",
		grade.InternID, grade.CriteriaID, grade.Value, nullString(formatTimestamp(grade.LastUpdate)),
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// UpdateGrade overwrites a grade.
func (r *GradeRepository) UpdateGrade(ctx context.Context, grade persistence.Grade) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"UPDATE grades SET intern_id = ?, criteria_id = ?, value = ?, last_update = ? WHERE id = ?",
		grade.InternID, grade.CriteriaID, grade.Value, nullString(formatTimestamp(grade.LastUpdate)), grade.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteGrade removes a grade.
func (r *GradeRepository) DeleteGrade(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM grades WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetGrade retrieves a grade by identifier.
func (r *GradeRepository) GetGrade(ctx context.Context, id int64) (persistence.Grade, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT "+gradeColumns+" FROM grades WHERE id = ?", id)
	return scanGrade(row)
}

// GetGradeFor retrieves the grade of an intern for one criterion.
func (r *GradeRepository) GetGradeFor(ctx context.Context, internID, criteriaID int64) (persistence.Grade, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT "+gradeColumns+" FROM grades WHERE intern_id = ? AND criteria_id = ?", internID, criteriaID)
	return scanGrade(row)
}

// ListGradesByIntern returns an intern's grades ordered by criterion.
func (r *GradeRepository) ListGradesByIntern(ctx context.Context, internID int64) ([]persistence.Grade, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx,
		"SELECT "+gradeColumns+" FROM grades WHERE intern_id = ? ORDER BY criteria_id ASC", internID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var grades []persistence.Grade
	for rows.Next() {
		grade, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return grades, nil
}

func scanGrade(row rowScanner) (persistence.Grade, error) {
	var grade persistence.Grade
	var lastUpdate sql.NullString
	if err := row.Scan(&grade.ID, &grade.InternID, &grade.CriteriaID, &grade.Value, &lastUpdate); err != nil {
		return persistence.Grade{}, mapError(err)
	}
	ts, err := parseTimestamp(lastUpdate)
	if err != nil {
		return persistence.Grade{}, err
	}
	grade.LastUpdate = ts
	return grade, nil
}
