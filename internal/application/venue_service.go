package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

var venueRequiredFields = []validation.Field[persistence.Venue]{
	{Label: "Local", Value: func(v persistence.Venue) any { return v.Name }},
}

// VenueService validates and persists venues. Venue names are not unique.
type VenueService struct {
	venues persistence.VenueRepository
	logger *slog.Logger
}

// NewVenueService constructs a venue service.
func NewVenueService(venues persistence.VenueRepository) *VenueService {
	return NewVenueServiceWithLogger(venues, nil)
}

// NewVenueServiceWithLogger constructs a venue service with a specified logger.
func NewVenueServiceWithLogger(venues persistence.VenueRepository, logger *slog.Logger) *VenueService {
	return &VenueService{venues: venues, logger: defaultLogger(logger)}
}

func (s *VenueService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "VenueService", operation, attrs...)
}

// Add validates venue, persists it and stores the assigned identifier on venue.
func (s *VenueService) Add(ctx context.Context, venue *persistence.Venue) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("VenueService is nil")
	}
	if venue == nil {
		return 0, fmt.Errorf("venue is nil")
	}

	logger := s.loggerWith(ctx, "Add", "venue_name", venue.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add venue", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("venue_id", id).InfoContext(ctx, "venue added")
	}()

	if venue.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	if err = validateVenue(venue); err != nil {
		return 0, err
	}
	warnSupervisorEmail(ctx, logger, venue)

	id, err = s.venues.CreateVenue(ctx, *venue)
	if err != nil {
		return 0, err
	}
	venue.ID = id
	return id, nil
}

// Update overwrites the stored venue.
func (s *VenueService) Update(ctx context.Context, venue *persistence.Venue) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("VenueService is nil")
	}
	if venue == nil || venue.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Update", "venue_id", venue.ID)
	if err := validateVenue(venue); err != nil {
		logger.ErrorContext(ctx, "failed to update venue", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	warnSupervisorEmail(ctx, logger, venue)
	ok, err := s.venues.UpdateVenue(ctx, *venue)
	return writeResult(ctx, logger, "update venue", ok, err), nil
}

// Delete removes venue. Interns placed there keep a dangling reference only
// if foreign keys are disabled.
func (s *VenueService) Delete(ctx context.Context, venue persistence.Venue) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("VenueService is nil")
	}
	if venue.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "venue_id", venue.ID)
	ok, err := s.venues.DeleteVenue(ctx, venue.ID)
	return writeResult(ctx, logger, "delete venue", ok, err), nil
}

// Get returns the venue with id, or nil.
func (s *VenueService) Get(ctx context.Context, id int64) (*persistence.Venue, error) {
	return lookup(s.venues.GetVenue(ctx, id))
}

// List returns every venue ordered by name.
func (s *VenueService) List(ctx context.Context) ([]persistence.Venue, error) {
	return s.venues.ListVenues(ctx)
}

// SearchByName returns venues whose name contains fragment.
func (s *VenueService) SearchByName(ctx context.Context, fragment string) ([]persistence.Venue, error) {
	return s.venues.SearchVenues(ctx, strings.TrimSpace(fragment))
}

// FindByName returns the oldest venue whose name equals name ignoring case, or nil.
func (s *VenueService) FindByName(ctx context.Context, name string) (*persistence.Venue, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	matches, err := s.venues.FindVenuesByName(ctx, name)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return &matches[0], nil
}

func validateVenue(venue *persistence.Venue) error {
	trimAll(
		&venue.Name,
		&venue.Address,
		&venue.SupervisorName,
		&venue.SupervisorEmail,
		&venue.SupervisorPhone,
	)
	return requireFields(*venue, venueRequiredFields).orNil()
}

// warnSupervisorEmail logs a malformed supervisor email. Supervisor contacts
// are free text, so the write goes ahead.
func warnSupervisorEmail(ctx context.Context, logger *slog.Logger, venue *persistence.Venue) {
	if venue.SupervisorEmail == "" {
		return
	}
	if err := validation.ValidateEmailFormat(venue.SupervisorEmail); err != nil {
		logger.WarnContext(ctx, "supervisor email looks malformed", "supervisor_email", venue.SupervisorEmail)
	}
}
