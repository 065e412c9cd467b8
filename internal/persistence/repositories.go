package persistence

import "context"

// Transactor runs fn with a transaction bound to the context it receives.
// Repository calls made with that context join the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// InternRepository exposes CRUD operations for interns.
type InternRepository interface {
	CreateIntern(ctx context.Context, intern Intern) (int64, error)
	UpdateIntern(ctx context.Context, intern Intern) (bool, error)
	DeleteIntern(ctx context.Context, id int64) (bool, error)
	GetIntern(ctx context.Context, id int64) (Intern, error)
	GetInternByRegistration(ctx context.Context, registration string) (Intern, error)
	ListInterns(ctx context.Context) ([]Intern, error)
	ListInternsByVenue(ctx context.Context, venueID int64) ([]Intern, error)
	// SearchInterns matches names containing the fragment, ordered by name.
	SearchInterns(ctx context.Context, fragment string) ([]Intern, error)
	// FindInternsByName matches names case-insensitively after trimming, ordered by id.
	FindInternsByName(ctx context.Context, name string) ([]Intern, error)
}

// VenueRepository exposes CRUD operations for venues.
type VenueRepository interface {
	CreateVenue(ctx context.Context, venue Venue) (int64, error)
	UpdateVenue(ctx context.Context, venue Venue) (bool, error)
	DeleteVenue(ctx context.Context, id int64) (bool, error)
	GetVenue(ctx context.Context, id int64) (Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)
	SearchVenues(ctx context.Context, fragment string) ([]Venue, error)
	FindVenuesByName(ctx context.Context, name string) ([]Venue, error)
}

// DocumentRepository stores checklist documents.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, document Document) (int64, error)
	// CreateDocuments inserts all documents in one transaction.
	CreateDocuments(ctx context.Context, documents []Document) error
	UpdateDocument(ctx context.Context, document Document) (bool, error)
	DeleteDocument(ctx context.Context, id int64) (bool, error)
	GetDocument(ctx context.Context, id int64) (Document, error)
	ListDocumentsByIntern(ctx context.Context, internID int64) ([]Document, error)
	CountDocumentsByIntern(ctx context.Context, internID int64) (int, error)
}

// ObservationRepository stores free-text observations.
type ObservationRepository interface {
	CreateObservation(ctx context.Context, observation Observation) (int64, error)
	UpdateObservation(ctx context.Context, observation Observation) (bool, error)
	DeleteObservation(ctx context.Context, id int64) (bool, error)
	GetObservation(ctx context.Context, id int64) (Observation, error)
	ListObservationsByIntern(ctx context.Context, internID int64) ([]Observation, error)
}

// MeetingRepository stores supervision meetings.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) (int64, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) (bool, error)
	DeleteMeeting(ctx context.Context, id int64) (bool, error)
	GetMeeting(ctx context.Context, id int64) (Meeting, error)
	ListMeetingsByIntern(ctx context.Context, internID int64) ([]Meeting, error)
}

// CriteriaRepository stores evaluation criteria.
type CriteriaRepository interface {
	CreateCriteria(ctx context.Context, criteria EvaluationCriteria) (int64, error)
	UpdateCriteria(ctx context.Context, criteria EvaluationCriteria) (bool, error)
	DeleteCriteria(ctx context.Context, id int64) (bool, error)
	GetCriteria(ctx context.Context, id int64) (EvaluationCriteria, error)
	ListCriteria(ctx context.Context) ([]EvaluationCriteria, error)
}

// GradeRepository stores grades.
type GradeRepository interface {
	CreateGrade(ctx context.Context, grade Grade) (int64, error)
	UpdateGrade(ctx context.Context, grade Grade) (bool, error)
	DeleteGrade(ctx context.Context, id int64) (bool, error)
	GetGrade(ctx context.Context, id int64) (Grade, error)
	GetGradeFor(ctx context.Context, internID, criteriaID int64) (Grade, error)
	ListGradesByIntern(ctx context.Context, internID int64) ([]Grade, error)
}
