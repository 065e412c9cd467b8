package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/internship-tracker/internal/persistence"
)

func TestInternRepository_CRUD(t *testing.T) {
	gateway := newTestGateway(t)
	repos := NewRepositories(gateway)
	ctx := context.Background()

	venueID, err := repos.Venues.CreateVenue(ctx, persistence.Venue{Name: "Hospital A", SupervisorName: "Dra. Lima"})
	if err != nil {
		t.Fatalf("CreateVenue failed: %v", err)
	}

	intern := persistence.Intern{
		Name:               "Jane Doe",
		RegistrationNumber: "12345",
		Term:               "2024.1",
		StartDate:          "2024-02-01",
		EndDate:            "2024-06-30",
		VenueID:            &venueID,
	}
	id, err := repos.Interns.CreateIntern(ctx, intern)
	if err != nil {
		t.Fatalf("CreateIntern failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected identifier to be assigned")
	}

	stored, err := repos.Interns.GetIntern(ctx, id)
	if err != nil {
		t.Fatalf("GetIntern failed: %v", err)
	}
	if stored.Name != "Jane Doe" || stored.VenueID == nil || *stored.VenueID != venueID {
		t.Fatalf("unexpected intern %#v", stored)
	}
	if stored.Email != "" {
		t.Fatalf("expected empty optional email, got %q", stored.Email)
	}

	stored.WorkingDays = "seg, qua"
	stored.VenueID = nil
	ok, err := repos.Interns.UpdateIntern(ctx, stored)
	if err != nil || !ok {
		t.Fatalf("UpdateIntern returned %v, %v", ok, err)
	}
	updated, err := repos.Interns.GetIntern(ctx, id)
	if err != nil {
		t.Fatalf("GetIntern failed: %v", err)
	}
	if updated.WorkingDays != "seg, qua" || updated.VenueID != nil {
		t.Fatalf("update not applied: %#v", updated)
	}

	byRA, err := repos.Interns.GetInternByRegistration(ctx, " 12345 ")
	if err != nil || byRA.ID != id {
		t.Fatalf("GetInternByRegistration returned %#v, %v", byRA, err)
	}

	removed, err := repos.Interns.DeleteIntern(ctx, id)
	if err != nil || !removed {
		t.Fatalf("DeleteIntern returned %v, %v", removed, err)
	}
	removed, err = repos.Interns.DeleteIntern(ctx, id)
	if err != nil || removed {
		t.Fatalf("expected second delete to report false, got %v, %v", removed, err)
	}
	if _, err := repos.Interns.GetIntern(ctx, id); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInternRepository_DuplicateRegistration(t *testing.T) {
	gateway := newTestGateway(t)
	interns := NewInternRepository(gateway)
	ctx := context.Background()

	if _, err := interns.CreateIntern(ctx, persistence.Intern{Name: "A", RegistrationNumber: "1"}); err != nil {
		t.Fatalf("CreateIntern failed: %v", err)
	}
	_, err := interns.CreateIntern(ctx, persistence.Intern{Name: "B", RegistrationNumber: "1"})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestInternRepository_SearchAndFindByName(t *testing.T) {
	gateway := newTestGateway(t)
	interns := NewInternRepository(gateway)
	ctx := context.Background()

	for i, name := range []string{"Ana Maria", "Ana", "Bruno 100%"} {
		if _, err := interns.CreateIntern(ctx, persistence.Intern{Name: name, RegistrationNumber: string(rune('a' + i))}); err != nil {
			t.Fatalf("CreateIntern failed: %v", err)
		}
	}

	found, err := interns.SearchInterns(ctx, "Ana")
	if err != nil {
		t.Fatalf("SearchInterns failed: %v", err)
	}
	if len(found) != 2 || found[0].Name != "Ana" {
		t.Fatalf("expected alphabetical substring matches, got %#v", found)
	}

	found, err = interns.SearchInterns(ctx, "0%")
	if err != nil {
		t.Fatalf("SearchInterns failed: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Bruno 100%" {
		t.Fatalf("expected wildcard to be escaped, got %#v", found)
	}

	exact, err := interns.FindInternsByName(ctx, "  ana ")
	if err != nil {
		t.Fatalf("FindInternsByName failed: %v", err)
	}
	if len(exact) != 1 || exact[0].Name != "Ana" {
		t.Fatalf("expected exact case-insensitive match only, got %#v", exact)
	}
}

func TestFindByName_FoldsAccentedCase(t *testing.T) {
	gateway := newTestGateway(t)
	repos := NewRepositories(gateway)
	ctx := context.Background()

	venueID, err := repos.Venues.CreateVenue(ctx, persistence.Venue{Name: "CLÍNICA SÃO JOSÉ"})
	if err != nil {
		t.Fatalf("CreateVenue failed: %v", err)
	}
	internID, err := repos.Interns.CreateIntern(ctx, persistence.Intern{Name: "JOÃO ÁVILA", RegistrationNumber: "111"})
	if err != nil {
		t.Fatalf("CreateIntern failed: %v", err)
	}

	venues, err := repos.Venues.FindVenuesByName(ctx, " Clínica São José ")
	if err != nil || len(venues) != 1 || venues[0].ID != venueID {
		t.Fatalf("expected venue %d, got %#v, %v", venueID, venues, err)
	}
	interns, err := repos.Interns.FindInternsByName(ctx, "João Ávila")
	if err != nil || len(interns) != 1 || interns[0].ID != internID {
		t.Fatalf("expected intern %d, got %#v, %v", internID, interns, err)
	}

	renamed := interns[0]
	renamed.Name = "Joana Ávila"
	if ok, err := repos.Interns.UpdateIntern(ctx, renamed); err != nil || !ok {
		t.Fatalf("UpdateIntern returned %v, %v", ok, err)
	}
	if stale, err := repos.Interns.FindInternsByName(ctx, "joão ávila"); err != nil || len(stale) != 0 {
		t.Fatalf("expected the old name to stop matching, got %#v, %v", stale, err)
	}
	if fresh, err := repos.Interns.FindInternsByName(ctx, "JOANA ÁVILA"); err != nil || len(fresh) != 1 {
		t.Fatalf("expected the new name to match, got %#v, %v", fresh, err)
	}
}

func TestDocumentRepository_BatchAndCount(t *testing.T) {
	gateway := newTestGateway(t)
	repos := NewRepositories(gateway)
	ctx := context.Background()

	internID, err := repos.Interns.CreateIntern(ctx, persistence.Intern{Name: "Jane", RegistrationNumber: "1"})
	if err != nil {
		t.Fatalf("CreateIntern failed: %v", err)
	}

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	batch := []persistence.Document{
		{InternID: internID, Name: "Termo de Compromisso", Status: "Pendente", LastUpdate: now},
		{InternID: internID, Name: "Plano de Atividades", Status: "Pendente", LastUpdate: now},
	}
	if err := repos.Documents.CreateDocuments(ctx, batch); err != nil {
		t.Fatalf("CreateDocuments failed: %v", err)
	}

	count, err := repos.Documents.CountDocumentsByIntern(ctx, internID)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 documents, got %d, %v", count, err)
	}

	docs, err := repos.Documents.ListDocumentsByIntern(ctx, internID)
	if err != nil {
		t.Fatalf("ListDocumentsByIntern failed: %v", err)
	}
	if !docs[0].LastUpdate.Equal(now) {
		t.Fatalf("expected timestamp round trip, got %v", docs[0].LastUpdate)
	}

	bad := []persistence.Document{
		{InternID: internID, Name: "Relatório", Status: "Pendente"},
		{InternID: 4242, Name: "Orphan", Status: "Pendente"},
	}
	if err := repos.Documents.CreateDocuments(ctx, bad); !errors.Is(err, persistence.ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
	count, _ = repos.Documents.CountDocumentsByIntern(ctx, internID)
	if count != 2 {
		t.Fatalf("expected failed batch to roll back, got %d documents", count)
	}
}

func TestGradeRepository_Constraints(t *testing.T) {
	gateway := newTestGateway(t)
	repos := NewRepositories(gateway)
	ctx := context.Background()

	internID, _ := repos.Interns.CreateIntern(ctx, persistence.Intern{Name: "Jane", RegistrationNumber: "1"})
	if _, err := repos.Criteria.CreateCriteria(ctx, persistence.EvaluationCriteria{Name: "Zero", Weight: 0}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected weight check to fail, got %v", err)
	}
	criteriaID, err := repos.Criteria.CreateCriteria(ctx, persistence.EvaluationCriteria{Name: "Pontualidade", Weight: 2.5})
	if err != nil {
		t.Fatalf("CreateCriteria failed: %v", err)
	}

	if _, err := repos.Grades.CreateGrade(ctx, persistence.Grade{InternID: internID, CriteriaID: criteriaID, Value: 2}); err != nil {
		t.Fatalf("CreateGrade failed: %v", err)
	}
	if _, err := repos.Grades.CreateGrade(ctx, persistence.Grade{InternID: internID, CriteriaID: criteriaID, Value: 1}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second grade, got %v", err)
	}

	grade, err := repos.Grades.GetGradeFor(ctx, internID, criteriaID)
	if err != nil || grade.Value != 2 {
		t.Fatalf("GetGradeFor returned %#v, %v", grade, err)
	}
}

func TestMeetingAndObservationRepositories(t *testing.T) {
	gateway := newTestGateway(t)
	repos := NewRepositories(gateway)
	ctx := context.Background()

	internID, _ := repos.Interns.CreateIntern(ctx, persistence.Intern{Name: "Jane", RegistrationNumber: "1"})

	for _, m := range []persistence.Meeting{
		{InternID: internID, Date: "2024-05-10", InternPresent: false},
		{InternID: internID, Date: "2024-04-02", InternPresent: true},
	} {
		if _, err := repos.Meetings.CreateMeeting(ctx, m); err != nil {
			t.Fatalf("CreateMeeting failed: %v", err)
		}
	}
	meetings, err := repos.Meetings.ListMeetingsByIntern(ctx, internID)
	if err != nil {
		t.Fatalf("ListMeetingsByIntern failed: %v", err)
	}
	if len(meetings) != 2 || meetings[0].Date != "2024-04-02" || !meetings[0].InternPresent {
		t.Fatalf("unexpected meetings %#v", meetings)
	}

	obsID, err := repos.Observations.CreateObservation(ctx, persistence.Observation{InternID: internID, Text: "Boa evolução"})
	if err != nil {
		t.Fatalf("CreateObservation failed: %v", err)
	}
	obs, err := repos.Observations.GetObservation(ctx, obsID)
	if err != nil || obs.Text != "Boa evolução" {
		t.Fatalf("GetObservation returned %#v, %v", obs, err)
	}
}
