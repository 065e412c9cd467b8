package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/internship-tracker/internal/persistence"
)

const venueColumns = "id, venue_name, venue_address, supervisor_name, supervisor_email, supervisor_phone"

// VenueRepository implements persistence.VenueRepository using SQLite.
type VenueRepository struct {
	gateway *Gateway
}

// NewVenueRepository creates a new SQLite venue repository.
func NewVenueRepository(gateway *Gateway) *VenueRepository {
	return &VenueRepository{gateway: gateway}
}

// CreateVenue inserts a new venue and returns the assigned identifier.
func (r *VenueRepository) CreateVenue(ctx context.Context, venue persistence.Venue) (int64, error) {
	if venue.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}

	result, err := r.gateway.querier(ctx).ExecContext(ctx, `
		INSERT INTO venues (venue_name, name_key, venue_address, supervisor_name, supervisor_email, supervisor_phone)
		VALUES (?, ?, ?, ?, ?, ?)`,
		venue.Name,
		persistence.NameKey(venue.Name),
		nullString(venue.Address),
		nullString(venue.SupervisorName),
		nullString(venue.SupervisorEmail),
		nullString(venue.SupervisorPhone),
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// UpdateVenue overwrites an existing venue.
func (r *VenueRepository) UpdateVenue(ctx context.Context, venue persistence.Venue) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, `
		UPDATE venues
		SET venue_name = ?, name_key = ?, venue_address = ?, supervisor_name = ?, supervisor_email = ?,
			supervisor_phone = ?
		WHERE id = ?`,
		venue.Name,
		persistence.NameKey(venue.Name),
		nullString(venue.Address),
		nullString(venue.SupervisorName),
		nullString(venue.SupervisorEmail),
		nullString(venue.SupervisorPhone),
		venue.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteVenue removes a venue. Linked interns keep their venue_id unless
// foreign keys reject the delete.
func (r *VenueRepository) DeleteVenue(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM venues WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetVenue retrieves a venue by identifier.
func (r *VenueRepository) GetVenue(ctx context.Context, id int64) (persistence.Venue, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE id = ?", id)
	return scanVenue(row)
}

// ListVenues returns all venues ordered by name.
func (r *VenueRepository) ListVenues(ctx context.Context) ([]persistence.Venue, error) {
	return r.query(ctx, "SELECT "+venueColumns+" FROM venues ORDER BY venue_name ASC, id ASC")
}

// SearchVenues returns venues whose name contains fragment.
func (r *VenueRepository) SearchVenues(ctx context.Context, fragment string) ([]persistence.Venue, error) {
	return r.query(ctx,
		"SELECT "+venueColumns+` FROM venues WHERE venue_name LIKE ? ESCAPE '\' ORDER BY venue_name ASC, id ASC`,
		likePattern(fragment))
}

// FindVenuesByName returns venues whose name has the same persistence.NameKey as name.
func (r *VenueRepository) FindVenuesByName(ctx context.Context, name string) ([]persistence.Venue, error) {
	return r.query(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE name_key = ? ORDER BY id ASC",
		persistence.NameKey(name))
}

func (r *VenueRepository) query(ctx context.Context, query string, args ...any) ([]persistence.Venue, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var venues []persistence.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return venues, nil
}

func scanVenue(row rowScanner) (persistence.Venue, error) {
	var venue persistence.Venue
	var address, supName, supEmail, supPhone sql.NullString
	if err := row.Scan(&venue.ID, &venue.Name, &address, &supName, &supEmail, &supPhone); err != nil {
		return persistence.Venue{}, mapError(err)
	}
	venue.Address = address.String
	venue.SupervisorName = supName.String
	venue.SupervisorEmail = supEmail.String
	venue.SupervisorPhone = supPhone.String
	return venue, nil
}
