package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

var internRequiredFields = []validation.Field[persistence.Intern]{
	{Label: "Nome", Value: func(i persistence.Intern) any { return i.Name }},
	{Label: "RA", Value: func(i persistence.Intern) any { return i.RegistrationNumber }},
	{Label: "Período", Value: func(i persistence.Intern) any { return i.Term }},
	{Label: "Data de início", Value: func(i persistence.Intern) any { return i.StartDate }},
	{Label: "Data de término", Value: func(i persistence.Intern) any { return i.EndDate }},
}

var importedInternRequiredFields = internRequiredFields[:2]

// InternService validates and persists interns.
type InternService struct {
	interns persistence.InternRepository
	logger  *slog.Logger
}

// NewInternService constructs an intern service with the provided repository.
func NewInternService(interns persistence.InternRepository) *InternService {
	return NewInternServiceWithLogger(interns, nil)
}

// NewInternServiceWithLogger constructs an intern service with a specified logger.
func NewInternServiceWithLogger(interns persistence.InternRepository, logger *slog.Logger) *InternService {
	return &InternService{interns: interns, logger: defaultLogger(logger)}
}

func (s *InternService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InternService", operation, attrs...)
}

// Add validates intern and persists it, storing the assigned identifier on
// intern. Dates are normalized to ISO in place.
func (s *InternService) Add(ctx context.Context, intern *persistence.Intern) (int64, error) {
	return s.add(ctx, "Add", intern, false)
}

// AddImported is Add for rows coming from a roster import: only name and
// registration number are required, and dates are checked when present.
func (s *InternService) AddImported(ctx context.Context, intern *persistence.Intern) (int64, error) {
	return s.add(ctx, "AddImported", intern, true)
}

func (s *InternService) add(ctx context.Context, operation string, intern *persistence.Intern, partial bool) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("InternService is nil")
	}
	if intern == nil {
		return 0, fmt.Errorf("intern is nil")
	}

	logger := s.loggerWith(ctx, operation, "registration_number", intern.RegistrationNumber)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add intern", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("intern_id", id).InfoContext(ctx, "intern added")
	}()

	if intern.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	normalizeIntern(intern)

	if err = s.ensureUniqueRegistration(ctx, intern); err != nil {
		return 0, err
	}
	if err = validateIntern(intern, partial); err != nil {
		return 0, err
	}

	id, err = s.interns.CreateIntern(ctx, *intern)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return 0, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return 0, err
	}
	intern.ID = id
	return id, nil
}

// Update validates intern and overwrites the stored record. It reports false
// when the storage layer fails or the identifier no longer exists.
func (s *InternService) Update(ctx context.Context, intern *persistence.Intern) (bool, error) {
	return s.update(ctx, "Update", intern, false)
}

// UpdateImported is Update with the relaxed rules of AddImported.
func (s *InternService) UpdateImported(ctx context.Context, intern *persistence.Intern) (bool, error) {
	return s.update(ctx, "UpdateImported", intern, true)
}

func (s *InternService) update(ctx context.Context, operation string, intern *persistence.Intern, partial bool) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("InternService is nil")
	}
	if intern == nil || intern.ID == 0 {
		return false, ErrMissingIdentity
	}

	logger := s.loggerWith(ctx, operation, "intern_id", intern.ID)
	normalizeIntern(intern)

	if err := s.ensureUniqueRegistration(ctx, intern); err != nil {
		logger.ErrorContext(ctx, "failed to update intern", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	if err := validateIntern(intern, partial); err != nil {
		logger.ErrorContext(ctx, "failed to update intern", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}

	ok, err := s.interns.UpdateIntern(ctx, *intern)
	return writeResult(ctx, logger, "update intern", ok, err), nil
}

// Delete removes intern and reports whether a row was removed.
func (s *InternService) Delete(ctx context.Context, intern persistence.Intern) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("InternService is nil")
	}
	if intern.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "intern_id", intern.ID)
	ok, err := s.interns.DeleteIntern(ctx, intern.ID)
	return writeResult(ctx, logger, "delete intern", ok, err), nil
}

// Get returns the intern with id, or nil when it does not exist.
func (s *InternService) Get(ctx context.Context, id int64) (*persistence.Intern, error) {
	return lookup(s.interns.GetIntern(ctx, id))
}

// FindByRegistration returns the intern owning registration, or nil.
func (s *InternService) FindByRegistration(ctx context.Context, registration string) (*persistence.Intern, error) {
	return lookup(s.interns.GetInternByRegistration(ctx, registration))
}

// FindByName returns the first intern whose name equals name ignoring case
// and surrounding spaces, or nil.
func (s *InternService) FindByName(ctx context.Context, name string) (*persistence.Intern, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	matches, err := s.interns.FindInternsByName(ctx, name)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return &matches[0], nil
}

// SearchByName returns interns whose name contains fragment, ordered by name.
func (s *InternService) SearchByName(ctx context.Context, fragment string) ([]persistence.Intern, error) {
	return s.interns.SearchInterns(ctx, strings.TrimSpace(fragment))
}

// List returns every intern ordered by name.
func (s *InternService) List(ctx context.Context) ([]persistence.Intern, error) {
	return s.interns.ListInterns(ctx)
}

// ListByVenue returns the interns placed at a venue.
func (s *InternService) ListByVenue(ctx context.Context, venueID int64) ([]persistence.Intern, error) {
	return s.interns.ListInternsByVenue(ctx, venueID)
}

func (s *InternService) ensureUniqueRegistration(ctx context.Context, intern *persistence.Intern) error {
	if intern.RegistrationNumber == "" {
		return nil
	}
	owner, err := s.interns.GetInternByRegistration(ctx, intern.RegistrationNumber)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner.ID == intern.ID {
		return nil
	}
	return fmt.Errorf("%w: RA %s belongs to %s", ErrDuplicateKey, intern.RegistrationNumber, owner.Name)
}

func normalizeIntern(intern *persistence.Intern) {
	trimAll(
		&intern.Name,
		&intern.RegistrationNumber,
		&intern.Term,
		&intern.Email,
		&intern.StartDate,
		&intern.EndDate,
		&intern.WorkingDays,
		&intern.WorkingHours,
	)
}

// validateIntern checks dates, then required fields, then email, and rewrites
// the dates in ISO form on success. With partial set only name and
// registration number are required and dates are optional.
func validateIntern(intern *persistence.Intern, partial bool) error {
	start, end, err := validateInternDates(intern.StartDate, intern.EndDate, partial)
	if err != nil {
		return err
	}

	fields := internRequiredFields
	if partial {
		fields = importedInternRequiredFields
	}
	if vErr := requireFields(*intern, fields); vErr.HasErrors() {
		return vErr
	}

	if intern.Email != "" {
		if err := validation.ValidateEmailFormat(intern.Email); err != nil {
			vErr := &ValidationError{}
			vErr.addCause("email", err)
			return vErr
		}
	}

	intern.StartDate = start
	intern.EndDate = end
	return nil
}

func validateInternDates(start, end string, partial bool) (string, string, error) {
	vErr := &ValidationError{}
	switch {
	case start != "" && end != "":
		s, e, err := validation.ValidateDateRange(start, end)
		if err != nil {
			vErr.addCause("dates", err)
			return "", "", vErr
		}
		return s, e, nil
	case !partial:
		if start == "" {
			vErr.add("start_date", "start date is required")
		}
		if end == "" {
			vErr.add("end_date", "end date is required")
		}
		return "", "", vErr
	}

	// Partial record with at most one date: normalize what is there.
	var err error
	if start != "" {
		if start, err = validation.ParseFlexibleDate(start); err != nil {
			vErr.addCause("start_date", err)
		}
	}
	if end != "" {
		if end, err = validation.ParseFlexibleDate(end); err != nil {
			vErr.addCause("end_date", err)
		}
	}
	if vErr.HasErrors() {
		return "", "", vErr
	}
	return start, end, nil
}
