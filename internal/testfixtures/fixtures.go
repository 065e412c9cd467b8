package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/internship-tracker/internal/persistence"
)

var (
	internCounter uint64
	venueCounter  uint64
)

var referenceTime = time.Date(2024, time.February, 5, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// InternOption configures a generated intern.
type InternOption func(*persistence.Intern)

// NewIntern returns a valid, unsaved intern with a unique registration number.
func NewIntern(opts ...InternOption) persistence.Intern {
	idx := atomic.AddUint64(&internCounter, 1)
	intern := persistence.Intern{
		Name:               fmt.Sprintf("Estagiário %03d", idx),
		RegistrationNumber: fmt.Sprintf("F%06d", idx),
		Term:               "2024/1",
		Email:              fmt.Sprintf("estagiario%03d@example.com", idx),
		StartDate:          "2024-02-05",
		EndDate:            "2024-06-28",
		WorkingHours:       "08:00-12:00",
	}
	for _, opt := range opts {
		opt(&intern)
	}
	return intern
}

// WithInternName overrides the generated name.
func WithInternName(name string) InternOption {
	return func(i *persistence.Intern) {
		i.Name = name
	}
}

// WithRegistration overrides the generated registration number.
func WithRegistration(ra string) InternOption {
	return func(i *persistence.Intern) {
		i.RegistrationNumber = ra
	}
}

// WithDates sets start and end dates in any accepted format.
func WithDates(start, end string) InternOption {
	return func(i *persistence.Intern) {
		i.StartDate = start
		i.EndDate = end
	}
}

// WithVenue links the intern to a venue.
func WithVenue(id int64) InternOption {
	return func(i *persistence.Intern) {
		venueID := id
		i.VenueID = &venueID
	}
}

// VenueOption configures a generated venue.
type VenueOption func(*persistence.Venue)

// NewVenue returns a valid, unsaved venue.
func NewVenue(opts ...VenueOption) persistence.Venue {
	idx := atomic.AddUint64(&venueCounter, 1)
	venue := persistence.Venue{
		Name:            fmt.Sprintf("Local %03d", idx),
		Address:         "Rua das Flores, 100",
		SupervisorName:  fmt.Sprintf("Supervisor %03d", idx),
		SupervisorEmail: fmt.Sprintf("supervisor%03d@example.com", idx),
		SupervisorPhone: "(11) 5555-0000",
	}
	for _, opt := range opts {
		opt(&venue)
	}
	return venue
}

// WithVenueName overrides the generated venue name.
func WithVenueName(name string) VenueOption {
	return func(v *persistence.Venue) {
		v.Name = name
	}
}
