package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

var observationRequiredFields = []validation.Field[persistence.Observation]{
	{Label: "Estagiário", Value: func(o persistence.Observation) any { return positiveID(o.InternID) }},
	{Label: "Observação", Value: func(o persistence.Observation) any { return o.Text }},
}

// ObservationService stores free-text notes about interns.
type ObservationService struct {
	observations persistence.ObservationRepository
	now          func() time.Time
	logger       *slog.Logger
}

// NewObservationService constructs an observation service.
func NewObservationService(observations persistence.ObservationRepository, now func() time.Time) *ObservationService {
	return NewObservationServiceWithLogger(observations, now, nil)
}

// NewObservationServiceWithLogger constructs an observation service with a specified logger.
func NewObservationServiceWithLogger(observations persistence.ObservationRepository, now func() time.Time, logger *slog.Logger) *ObservationService {
	if now == nil {
		now = time.Now
	}
	return &ObservationService{observations: observations, now: now, logger: defaultLogger(logger)}
}

func (s *ObservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ObservationService", operation, attrs...)
}

// Add persists a new observation stamped with the current time.
func (s *ObservationService) Add(ctx context.Context, observation *persistence.Observation) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("ObservationService is nil")
	}
	if observation == nil {
		return 0, fmt.Errorf("observation is nil")
	}

	logger := s.loggerWith(ctx, "Add", "intern_id", observation.InternID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add observation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("observation_id", id).InfoContext(ctx, "observation added")
	}()

	if observation.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	if err = s.prepare(observation); err != nil {
		return 0, err
	}
	id, err = s.observations.CreateObservation(ctx, *observation)
	if err != nil {
		return 0, err
	}
	observation.ID = id
	return id, nil
}

// Update rewrites the observation text and timestamp.
func (s *ObservationService) Update(ctx context.Context, observation *persistence.Observation) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("ObservationService is nil")
	}
	if observation == nil || observation.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Update", "observation_id", observation.ID)
	if err := s.prepare(observation); err != nil {
		logger.ErrorContext(ctx, "failed to update observation", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	ok, err := s.observations.UpdateObservation(ctx, *observation)
	return writeResult(ctx, logger, "update observation", ok, err), nil
}

// Delete removes observation.
func (s *ObservationService) Delete(ctx context.Context, observation persistence.Observation) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("ObservationService is nil")
	}
	if observation.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "observation_id", observation.ID)
	ok, err := s.observations.DeleteObservation(ctx, observation.ID)
	return writeResult(ctx, logger, "delete observation", ok, err), nil
}

// Get returns the observation with id, or nil.
func (s *ObservationService) Get(ctx context.Context, id int64) (*persistence.Observation, error) {
	return lookup(s.observations.GetObservation(ctx, id))
}

// ListByIntern returns an intern's observations, newest first.
func (s *ObservationService) ListByIntern(ctx context.Context, internID int64) ([]persistence.Observation, error) {
	return s.observations.ListObservationsByIntern(ctx, internID)
}

func (s *ObservationService) prepare(observation *persistence.Observation) error {
	trimAll(&observation.Text)
	if vErr := requireFields(*observation, observationRequiredFields); vErr.HasErrors() {
		return vErr
	}
	observation.LastUpdate = s.now().UTC()
	return nil
}
