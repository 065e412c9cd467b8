package persistence

import "time"

// Intern is a student tracked through one internship period.
// ID is zero until the record is persisted.
type Intern struct {
	ID                 int64
	Name               string
	RegistrationNumber string
	Term               string
	Email              string
	StartDate          string
	EndDate            string
	WorkingDays        string
	WorkingHours       string
	VenueID            *int64
}

// Venue is an organization hosting interns.
type Venue struct {
	ID              int64
	Name            string
	Address         string
	SupervisorName  string
	SupervisorEmail string
	SupervisorPhone string
}

// Document is one item of an intern's paperwork checklist.
type Document struct {
	ID         int64
	InternID   int64
	Name       string
	Status     string
	Feedback   string
	LastUpdate time.Time
}

// Observation is a free-text note about an intern.
type Observation struct {
	ID         int64
	InternID   int64
	Text       string
	LastUpdate time.Time
}

// Meeting records a supervision meeting and whether the intern attended.
type Meeting struct {
	ID            int64
	InternID      int64
	Date          string
	InternPresent bool
}

// EvaluationCriteria is a rubric line; Weight is the maximum achievable score.
type EvaluationCriteria struct {
	ID          int64
	Name        string
	Description string
	Weight      float64
}

// Grade is the score of one intern against one criterion.
type Grade struct {
	ID         int64
	InternID   int64
	CriteriaID int64
	Value      float64
	LastUpdate time.Time
}
