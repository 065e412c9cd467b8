package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

var gradeRequiredFields = []validation.Field[persistence.Grade]{
	{Label: "Estagiário", Value: func(g persistence.Grade) any { return positiveID(g.InternID) }},
	{Label: "Critério", Value: func(g persistence.Grade) any { return positiveID(g.CriteriaID) }},
}

// GradeService scores interns against evaluation criteria.
type GradeService struct {
	grades   persistence.GradeRepository
	criteria persistence.CriteriaRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewGradeService constructs a grade service. criteria may be nil, in which
// case grades are not bounded by the criterion weight.
func NewGradeService(grades persistence.GradeRepository, criteria persistence.CriteriaRepository, now func() time.Time) *GradeService {
	return NewGradeServiceWithLogger(grades, criteria, now, nil)
}

// NewGradeServiceWithLogger constructs a grade service with a specified logger.
func NewGradeServiceWithLogger(grades persistence.GradeRepository, criteria persistence.CriteriaRepository, now func() time.Time, logger *slog.Logger) *GradeService {
	if now == nil {
		now = time.Now
	}
	return &GradeService{grades: grades, criteria: criteria, now: now, logger: defaultLogger(logger)}
}

func (s *GradeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GradeService", operation, attrs...)
}

// Add persists a new grade.
func (s *GradeService) Add(ctx context.Context, grade *persistence.Grade) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("GradeService is nil")
	}
	if grade == nil {
		return 0, fmt.Errorf("grade is nil")
	}

	logger := s.loggerWith(ctx, "Add", "intern_id", grade.InternID, "criteria_id", grade.CriteriaID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add grade", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("grade_id", id).InfoContext(ctx, "grade added")
	}()

	if grade.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	if err = s.prepare(ctx, grade); err != nil {
		return 0, err
	}
	id, err = s.grades.CreateGrade(ctx, *grade)
	if err != nil {
		return 0, err
	}
	grade.ID = id
	return id, nil
}

// Update overwrites the stored grade.
func (s *GradeService) Update(ctx context.Context, grade *persistence.Grade) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("GradeService is nil")
	}
	if grade == nil || grade.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Update", "grade_id", grade.ID)
	if err := s.prepare(ctx, grade); err != nil {
		logger.ErrorContext(ctx, "failed to update grade", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	ok, err := s.grades.UpdateGrade(ctx, *grade)
	return writeResult(ctx, logger, "update grade", ok, err), nil
}

// Record sets the grade of an intern for a criterion, creating it on first use.
func (s *GradeService) Record(ctx context.Context, internID, criteriaID int64, value float64) (*persistence.Grade, error) {
	if s == nil {
		return nil, fmt.Errorf("GradeService is nil")
	}
	existing, err := lookup(s.grades.GetGradeFor(ctx, internID, criteriaID))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		grade := &persistence.Grade{InternID: internID, CriteriaID: criteriaID, Value: value}
		if _, err := s.Add(ctx, grade); err != nil {
			return nil, err
		}
		return grade, nil
	}

	existing.Value = value
	ok, err := s.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("grade %d was not updated", existing.ID)
	}
	return existing, nil
}

// Delete removes grade.
func (s *GradeService) Delete(ctx context.Context, grade persistence.Grade) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("GradeService is nil")
	}
	if grade.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "grade_id", grade.ID)
	ok, err := s.grades.DeleteGrade(ctx, grade.ID)
	return writeResult(ctx, logger, "delete grade", ok, err), nil
}

// Get returns the grade with id, or nil.
func (s *GradeService) Get(ctx context.Context, id int64) (*persistence.Grade, error) {
	return lookup(s.grades.GetGrade(ctx, id))
}

// ListByIntern returns every grade of an intern.
func (s *GradeService) ListByIntern(ctx context.Context, internID int64) ([]persistence.Grade, error) {
	return s.grades.ListGradesByIntern(ctx, internID)
}

func (s *GradeService) prepare(ctx context.Context, grade *persistence.Grade) error {
	vErr := requireFields(*grade, gradeRequiredFields)
	switch {
	case math.IsNaN(grade.Value) || math.IsInf(grade.Value, 0):
		vErr.add("value", "grade value must be a finite number")
	case grade.Value < 0:
		vErr.add("value", "grade value must not be negative")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if s.criteria != nil {
		criteria, err := lookup(s.criteria.GetCriteria(ctx, grade.CriteriaID))
		if err != nil {
			return err
		}
		if criteria != nil && grade.Value > criteria.Weight {
			vErr.add("value", fmt.Sprintf("grade value %.2f exceeds criteria weight %.2f", grade.Value, criteria.Weight))
			return vErr
		}
	}

	grade.LastUpdate = s.now().UTC()
	return nil
}
