package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/internship-tracker/internal/persistence"
)

const internColumns = `id, name, registration_number, term, email, start_date, end_date,
	working_days, working_hours, venue_id`

// InternRepository implements persistence.InternRepository using SQLite.
type InternRepository struct {
	gateway *Gateway
}

// NewInternRepository creates a new SQLite intern repository.
func NewInternRepository(gateway *Gateway) *InternRepository {
	return &InternRepository{gateway: gateway}
}

// CreateIntern inserts a new intern and returns the assigned identifier.
func (r *InternRepository) CreateIntern(ctx context.Context, intern persistence.Intern) (int64, error) {
	if intern.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}

	result, err := r.gateway.querier(ctx).ExecContext(ctx, `
		INSERT INTO interns (name, name_key, registration_number, term, email, start_date, end_date,
			working_days, working_hours, venue_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intern.Name,
		persistence.NameKey(intern.Name),
		intern.RegistrationNumber,
		nullString(intern.Term),
		nullString(intern.Email),
		nullString(intern.StartDate),
		nullString(intern.EndDate),
		nullString(intern.WorkingDays),
		nullString(intern.WorkingHours),
		nullInt64(intern.VenueID),
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// UpdateIntern overwrites every column of an existing intern.
// It reports false when no row carries the identifier.
func (r *InternRepository) UpdateIntern(ctx context.Context, intern persistence.Intern) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, `
		UPDATE interns
		SET name = ?, name_key = ?, registration_number = ?, term = ?, email = ?, start_date = ?,
			end_date = ?, working_days = ?, working_hours = ?, venue_id = ?
		WHERE id = ?`,
		intern.Name,
		persistence.NameKey(intern.Name),
		intern.RegistrationNumber,
		nullString(intern.Term),
		nullString(intern.Email),
		nullString(intern.StartDate),
		nullString(intern.EndDate),
		nullString(intern.WorkingDays),
		nullString(intern.WorkingHours),
		nullInt64(intern.VenueID),
		intern.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteIntern removes an intern. Dependent rows are not touched.
func (r *InternRepository) DeleteIntern(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM interns WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetIntern retrieves an intern by identifier.
func (r *InternRepository) GetIntern(ctx context.Context, id int64) (persistence.Intern, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT "+internColumns+" FROM interns WHERE id = ?", id)
	return scanIntern(row)
}

// GetInternByRegistration retrieves the intern owning a registration number.
func (r *InternRepository) GetInternByRegistration(ctx context.Context, registration string) (persistence.Intern, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT "+internColumns+" FROM interns WHERE registration_number = ?",
		strings.TrimSpace(registration))
	return scanIntern(row)
}

// ListInterns returns all interns ordered by name.
func (r *InternRepository) ListInterns(ctx context.Context) ([]persistence.Intern, error) {
	return r.query(ctx, "SELECT "+internColumns+" FROM interns ORDER BY name ASC, id ASC")
}

// ListInternsByVenue returns the interns linked to a venue.
func (r *InternRepository) ListInternsByVenue(ctx context.Context, venueID int64) ([]persistence.Intern, error) {
	return r.query(ctx,
		"SELECT "+internColumns+" FROM interns WHERE venue_id = ? ORDER BY name ASC, id ASC", venueID)
}

// SearchInterns returns interns whose name contains fragment.
func (r *InternRepository) SearchInterns(ctx context.Context, fragment string) ([]persistence.Intern, error) {
	return r.query(ctx,
		"SELECT "+internColumns+` FROM interns WHERE name LIKE ? ESCAPE '\' ORDER BY name ASC, id ASC`,
		likePattern(fragment))
}

// FindInternsByName returns interns whose name has the same persistence.NameKey as name.
func (r *InternRepository) FindInternsByName(ctx context.Context, name string) ([]persistence.Intern, error) {
	return r.query(ctx,
		"SELECT "+internColumns+" FROM interns WHERE name_key = ? ORDER BY id ASC",
		persistence.NameKey(name))
}

func (r *InternRepository) query(ctx context.Context, query string, args ...any) ([]persistence.Intern, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var interns []persistence.Intern
	for rows.Next() {
		intern, err := scanIntern(rows)
		if err != nil {
			return nil, err
		}
		interns = append(interns, intern)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return interns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntern(row rowScanner) (persistence.Intern, error) {
	var intern persistence.Intern
	var term, email, start, end, days, hours sql.NullString
	var venueID sql.NullInt64
	err := row.Scan(
		&intern.ID,
		&intern.Name,
		&intern.RegistrationNumber,
		&term,
		&email,
		&start,
		&end,
		&days,
		&hours,
		&venueID,
	)
	if err != nil {
		return persistence.Intern{}, mapError(err)
	}

	intern.Term = term.String
	intern.Email = email.String
	intern.StartDate = start.String
	intern.EndDate = end.String
	intern.WorkingDays = days.String
	intern.WorkingHours = hours.String
	intern.VenueID = int64Ptr(venueID)
	return intern, nil
}
