package application

import (
	"log/slog"
	"time"

	"github.com/example/internship-tracker/internal/persistence"
)

// ServiceDeps lists the collaborators needed to build every service.
type ServiceDeps struct {
	Interns      persistence.InternRepository
	Venues       persistence.VenueRepository
	Documents    persistence.DocumentRepository
	Observations persistence.ObservationRepository
	Meetings     persistence.MeetingRepository
	Criteria     persistence.CriteriaRepository
	Grades       persistence.GradeRepository
	Checklist    Checklist
	Now          func() time.Time
	Logger       *slog.Logger
}

// Services bundles the entity services sharing one persistence gateway.
type Services struct {
	Interns      *InternService
	Venues       *VenueService
	Documents    *DocumentService
	Observations *ObservationService
	Meetings     *MeetingService
	Criteria     *EvaluationCriteriaService
	Grades       *GradeService
}

// NewServices constructs every service from deps.
func NewServices(deps ServiceDeps) Services {
	return Services{
		Interns:      NewInternServiceWithLogger(deps.Interns, deps.Logger),
		Venues:       NewVenueServiceWithLogger(deps.Venues, deps.Logger),
		Documents:    NewDocumentServiceWithLogger(deps.Documents, deps.Checklist, deps.Now, deps.Logger),
		Observations: NewObservationServiceWithLogger(deps.Observations, deps.Now, deps.Logger),
		Meetings:     NewMeetingServiceWithLogger(deps.Meetings, deps.Logger),
		Criteria:     NewEvaluationCriteriaServiceWithLogger(deps.Criteria, deps.Logger),
		Grades:       NewGradeServiceWithLogger(deps.Grades, deps.Criteria, deps.Now, deps.Logger),
	}
}
