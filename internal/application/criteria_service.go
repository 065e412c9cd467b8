package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

var criteriaRequiredFields = []validation.Field[persistence.EvaluationCriteria]{
	{Label: "Critério", Value: func(c persistence.EvaluationCriteria) any { return c.Name }},
}

// EvaluationCriteriaService manages the weighted rubric lines grades refer to.
type EvaluationCriteriaService struct {
	criteria persistence.CriteriaRepository
	logger   *slog.Logger
}

// NewEvaluationCriteriaService constructs a criteria service.
func NewEvaluationCriteriaService(criteria persistence.CriteriaRepository) *EvaluationCriteriaService {
	return NewEvaluationCriteriaServiceWithLogger(criteria, nil)
}

// NewEvaluationCriteriaServiceWithLogger constructs a criteria service with a specified logger.
func NewEvaluationCriteriaServiceWithLogger(criteria persistence.CriteriaRepository, logger *slog.Logger) *EvaluationCriteriaService {
	return &EvaluationCriteriaService{criteria: criteria, logger: defaultLogger(logger)}
}

func (s *EvaluationCriteriaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EvaluationCriteriaService", operation, attrs...)
}

// Add persists a new criterion.
func (s *EvaluationCriteriaService) Add(ctx context.Context, criteria *persistence.EvaluationCriteria) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("EvaluationCriteriaService is nil")
	}
	if criteria == nil {
		return 0, fmt.Errorf("criteria is nil")
	}

	logger := s.loggerWith(ctx, "Add", "criteria_name", criteria.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add criteria", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("criteria_id", id).InfoContext(ctx, "criteria added")
	}()

	if criteria.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	if err = validateCriteria(criteria); err != nil {
		return 0, err
	}
	id, err = s.criteria.CreateCriteria(ctx, *criteria)
	if err != nil {
		return 0, err
	}
	criteria.ID = id
	return id, nil
}

// Update overwrites the stored criterion.
func (s *EvaluationCriteriaService) Update(ctx context.Context, criteria *persistence.EvaluationCriteria) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("EvaluationCriteriaService is nil")
	}
	if criteria == nil || criteria.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Update", "criteria_id", criteria.ID)
	if err := validateCriteria(criteria); err != nil {
		logger.ErrorContext(ctx, "failed to update criteria", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	ok, err := s.criteria.UpdateCriteria(ctx, *criteria)
	return writeResult(ctx, logger, "update criteria", ok, err), nil
}

// Delete removes criteria.
func (s *EvaluationCriteriaService) Delete(ctx context.Context, criteria persistence.EvaluationCriteria) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("EvaluationCriteriaService is nil")
	}
	if criteria.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "criteria_id", criteria.ID)
	ok, err := s.criteria.DeleteCriteria(ctx, criteria.ID)
	return writeResult(ctx, logger, "delete criteria", ok, err), nil
}

// Get returns the criterion with id, or nil.
func (s *EvaluationCriteriaService) Get(ctx context.Context, id int64) (*persistence.EvaluationCriteria, error) {
	return lookup(s.criteria.GetCriteria(ctx, id))
}

// List returns every criterion in creation order.
func (s *EvaluationCriteriaService) List(ctx context.Context) ([]persistence.EvaluationCriteria, error) {
	return s.criteria.ListCriteria(ctx)
}

func validateCriteria(criteria *persistence.EvaluationCriteria) error {
	trimAll(&criteria.Name, &criteria.Description)
	vErr := requireFields(*criteria, criteriaRequiredFields)
	switch {
	case math.IsNaN(criteria.Weight) || math.IsInf(criteria.Weight, 0):
		vErr.add("weight", "weight must be a finite number")
	case criteria.Weight <= 0:
		vErr.add("weight", "weight must be greater than zero")
	}
	return vErr.orNil()
}
