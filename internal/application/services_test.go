package application_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/example/internship-tracker/internal/application"
	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/testfixtures"
)

func newServices(t *testing.T, opts ...testfixtures.ServiceFactoryOption) (application.Services, *testfixtures.ServiceFactory) {
	t.Helper()
	harness := testfixtures.NewSQLiteHarness(t)
	factory := testfixtures.NewServiceFactory(opts...)
	return factory.Services(harness), factory
}

func addIntern(t *testing.T, services application.Services, opts ...testfixtures.InternOption) persistence.Intern {
	t.Helper()
	intern := testfixtures.NewIntern(opts...)
	if _, err := services.Interns.Add(context.Background(), &intern); err != nil {
		t.Fatalf("failed to add intern: %v", err)
	}
	return intern
}

func TestVenueService(t *testing.T) {
	t.Parallel()

	services, _ := newServices(t)
	ctx := context.Background()

	t.Run("requires a name", func(t *testing.T) {
		venue := persistence.Venue{Address: "Somewhere"}
		_, err := services.Venues.Add(ctx, &venue)
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("allows duplicate names", func(t *testing.T) {
		first := testfixtures.NewVenue(testfixtures.WithVenueName("Hospital A"))
		second := testfixtures.NewVenue(testfixtures.WithVenueName("Hospital A"))
		if _, err := services.Venues.Add(ctx, &first); err != nil {
			t.Fatalf("first Add failed: %v", err)
		}
		if _, err := services.Venues.Add(ctx, &second); err != nil {
			t.Fatalf("second Add failed: %v", err)
		}

		found, err := services.Venues.FindByName(ctx, "hospital a")
		if err != nil || found == nil {
			t.Fatalf("expected FindByName to match, got %v, %v", found, err)
		}
		if found.ID != first.ID {
			t.Fatalf("expected oldest venue %d, got %d", first.ID, found.ID)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		venue := testfixtures.NewVenue()
		if _, err := services.Venues.Add(ctx, &venue); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		venue.SupervisorName = "Dra. Silva"
		if ok, err := services.Venues.Update(ctx, &venue); err != nil || !ok {
			t.Fatalf("Update failed: ok=%v err=%v", ok, err)
		}
		got, _ := services.Venues.Get(ctx, venue.ID)
		if got == nil || got.SupervisorName != "Dra. Silva" {
			t.Fatalf("expected updated supervisor, got %+v", got)
		}
		if ok, err := services.Venues.Delete(ctx, venue); err != nil || !ok {
			t.Fatalf("Delete failed: ok=%v err=%v", ok, err)
		}
		if got, _ := services.Venues.Get(ctx, venue.ID); got != nil {
			t.Fatalf("expected venue to be gone, got %+v", got)
		}
	})

	t.Run("deleting a referenced venue is refused by foreign keys", func(t *testing.T) {
		venue := testfixtures.NewVenue()
		if _, err := services.Venues.Add(ctx, &venue); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		addIntern(t, services, testfixtures.WithVenue(venue.ID))

		ok, err := services.Venues.Delete(ctx, venue)
		if err != nil {
			t.Fatalf("expected storage failure to be swallowed, got %v", err)
		}
		if ok {
			t.Fatal("expected delete of referenced venue to report false")
		}
	})
}

func TestVenueService_MalformedSupervisorEmailIsOnlyLogged(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	services, _ := newServices(t, testfixtures.WithLogger(logger))
	ctx := context.Background()

	venue := testfixtures.NewVenue()
	venue.SupervisorEmail = " sup(at)x.com "
	if _, err := services.Venues.Add(ctx, &venue); err != nil {
		t.Fatalf("expected Add to accept any supervisor email, got %v", err)
	}

	venue.SupervisorEmail = "still not an email"
	if ok, err := services.Venues.Update(ctx, &venue); err != nil || !ok {
		t.Fatalf("expected Update to succeed, got ok=%v err=%v", ok, err)
	}
	got, _ := services.Venues.Get(ctx, venue.ID)
	if got == nil || got.SupervisorEmail != "still not an email" {
		t.Fatalf("expected supervisor email to be stored as typed, got %+v", got)
	}

	if n := strings.Count(logs.String(), "supervisor email looks malformed"); n != 2 {
		t.Fatalf("expected two warnings, got %d in:\n%s", n, logs.String())
	}
	if !strings.Contains(logs.String(), "supervisor_email=sup(at)x.com") {
		t.Fatalf("expected trimmed email in the warning, got:\n%s", logs.String())
	}
}

func TestInternService_DuplicateRegistrationOnStorage(t *testing.T) {
	t.Parallel()

	services, _ := newServices(t)
	ctx := context.Background()

	first := addIntern(t, services, testfixtures.WithRegistration("12345"))
	second := testfixtures.NewIntern(testfixtures.WithRegistration("12345"))
	if _, err := services.Interns.Add(ctx, &second); !errors.Is(err, application.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	if ok, err := services.Interns.Delete(ctx, first); err != nil || !ok {
		t.Fatalf("Delete failed: ok=%v err=%v", ok, err)
	}
	if _, err := services.Interns.Add(ctx, &second); err != nil {
		t.Fatalf("expected registration to be free after delete, got %v", err)
	}
}

func TestDocumentService_CreateDefaults(t *testing.T) {
	t.Parallel()

	services, _ := newServices(t)
	ctx := context.Background()
	intern := addIntern(t, services)

	created, err := services.Documents.CreateDefaults(ctx, intern.ID)
	if err != nil {
		t.Fatalf("CreateDefaults returned error: %v", err)
	}
	if created != len(application.DefaultChecklist) {
		t.Fatalf("expected %d documents, got %d", len(application.DefaultChecklist), created)
	}

	again, err := services.Documents.CreateDefaults(ctx, intern.ID)
	if err != nil || again != 0 {
		t.Fatalf("expected second call to be a no-op, got %d, %v", again, err)
	}

	docs, err := services.Documents.ListByIntern(ctx, intern.ID)
	if err != nil {
		t.Fatalf("ListByIntern returned error: %v", err)
	}
	if len(docs) != len(application.DefaultChecklist) {
		t.Fatalf("expected %d documents, got %d", len(application.DefaultChecklist), len(docs))
	}
	for _, doc := range docs {
		if doc.Status != application.DefaultDocumentStatus {
			t.Fatalf("expected status %q, got %q", application.DefaultDocumentStatus, doc.Status)
		}
	}

	if _, err := services.Documents.CreateDefaults(ctx, 0); !errors.Is(err, application.ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestDocumentService_SetStatusRefreshesTimestamp(t *testing.T) {
	t.Parallel()

	services, factory := newServices(t)
	ctx := context.Background()
	intern := addIntern(t, services)

	doc := persistence.Document{InternID: intern.ID, Name: "Termo de Compromisso"}
	if _, err := services.Documents.Add(ctx, &doc); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if doc.Status != application.DefaultDocumentStatus {
		t.Fatalf("expected default status, got %q", doc.Status)
	}

	later := factory.Clock.AdvanceDays(2)
	ok, err := services.Documents.SetStatus(ctx, doc.ID, "Aprovado", "ok")
	if err != nil || !ok {
		t.Fatalf("SetStatus failed: ok=%v err=%v", ok, err)
	}
	got, _ := services.Documents.Get(ctx, doc.ID)
	if got.Status != "Aprovado" || got.Feedback != "ok" {
		t.Fatalf("unexpected document %+v", got)
	}
	if !got.LastUpdate.Equal(later) {
		t.Fatalf("expected last update %v, got %v", later, got.LastUpdate)
	}

	if _, err := services.Documents.SetStatus(ctx, 999, "Aprovado", ""); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown document, got %v", err)
	}
}

func TestObservationService(t *testing.T) {
	t.Parallel()

	services, factory := newServices(t)
	ctx := context.Background()
	intern := addIntern(t, services)

	empty := persistence.Observation{InternID: intern.ID, Text: "   "}
	if _, err := services.Observations.Add(ctx, &empty); err == nil {
		t.Fatal("expected blank observation to be rejected")
	}

	first := persistence.Observation{InternID: intern.ID, Text: "Chegou atrasado"}
	if _, err := services.Observations.Add(ctx, &first); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	factory.Clock.Advance(time.Hour)
	second := persistence.Observation{InternID: intern.ID, Text: "Boa evolução"}
	if _, err := services.Observations.Add(ctx, &second); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	list, err := services.Observations.ListByIntern(ctx, intern.ID)
	if err != nil {
		t.Fatalf("ListByIntern returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest observation first, got %+v", list)
	}
}

func TestMeetingService_NormalizesDate(t *testing.T) {
	t.Parallel()

	services, _ := newServices(t)
	ctx := context.Background()
	intern := addIntern(t, services)

	meeting := persistence.Meeting{InternID: intern.ID, Date: "15/03/2024", InternPresent: true}
	if _, err := services.Meetings.Add(ctx, &meeting); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if meeting.Date != "2024-03-15" {
		t.Fatalf("expected ISO date, got %q", meeting.Date)
	}

	bad := persistence.Meeting{InternID: intern.ID, Date: "março"}
	if _, err := services.Meetings.Add(ctx, &bad); err == nil {
		t.Fatal("expected unparseable date to be rejected")
	}

	meeting.InternPresent = false
	if ok, err := services.Meetings.Update(ctx, &meeting); err != nil || !ok {
		t.Fatalf("Update failed: ok=%v err=%v", ok, err)
	}
	got, _ := services.Meetings.Get(ctx, meeting.ID)
	if got == nil || got.InternPresent {
		t.Fatalf("expected attendance to be cleared, got %+v", got)
	}
}

func TestEvaluationCriteriaService_RequiresPositiveWeight(t *testing.T) {
	t.Parallel()

	services, _ := newServices(t)
	ctx := context.Background()

	for _, weight := range []float64{0, -2, math.NaN(), math.Inf(1), math.Inf(-1)} {
		criteria := persistence.EvaluationCriteria{Name: "Pontualidade", Weight: weight}
		_, err := services.Criteria.Add(ctx, &criteria)
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("weight %v: expected ValidationError, got %v", weight, err)
		}
		if _, ok := vErr.FieldErrors["weight"]; !ok {
			t.Fatalf("weight %v: expected weight error, got %v", weight, vErr.FieldErrors)
		}
	}

	criteria := persistence.EvaluationCriteria{Name: "Pontualidade", Weight: 2.5}
	if _, err := services.Criteria.Add(ctx, &criteria); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	list, _ := services.Criteria.List(ctx)
	if len(list) != 1 || list[0].Weight != 2.5 {
		t.Fatalf("unexpected criteria list %+v", list)
	}
}

func TestGradeService(t *testing.T) {
	t.Parallel()

	services, _ := newServices(t)
	ctx := context.Background()
	intern := addIntern(t, services)
	criteria := persistence.EvaluationCriteria{Name: "Pontualidade", Weight: 2}
	if _, err := services.Criteria.Add(ctx, &criteria); err != nil {
		t.Fatalf("criteria Add failed: %v", err)
	}

	t.Run("negative value is rejected and zero accepted", func(t *testing.T) {
		negative := persistence.Grade{InternID: intern.ID, CriteriaID: criteria.ID, Value: -1}
		_, err := services.Grades.Add(ctx, &negative)
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(vErr.FieldErrors["value"], "negative") {
			t.Fatalf("expected negative-value message, got %q", vErr.FieldErrors["value"])
		}

		zero := persistence.Grade{InternID: intern.ID, CriteriaID: criteria.ID, Value: 0}
		if _, err := services.Grades.Add(ctx, &zero); err != nil {
			t.Fatalf("expected zero grade to be accepted, got %v", err)
		}
		if _, err := services.Grades.Delete(ctx, zero); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
	})

	t.Run("value above weight is rejected", func(t *testing.T) {
		grade := persistence.Grade{InternID: intern.ID, CriteriaID: criteria.ID, Value: 2.5}
		if _, err := services.Grades.Add(ctx, &grade); err == nil {
			t.Fatal("expected value above weight to be rejected")
		}
	})

	t.Run("non-finite values are rejected", func(t *testing.T) {
		for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			grade := persistence.Grade{InternID: intern.ID, CriteriaID: criteria.ID, Value: value}
			_, err := services.Grades.Add(ctx, &grade)
			var vErr *application.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("value %v: expected ValidationError, got %v", value, err)
			}
			if !strings.Contains(vErr.FieldErrors["value"], "finite") {
				t.Fatalf("value %v: expected finite-number message, got %q", value, vErr.FieldErrors["value"])
			}
			if _, err := services.Grades.Record(ctx, intern.ID, criteria.ID, value); err == nil {
				t.Fatalf("value %v: expected Record to reject it", value)
			}
		}
		grades, _ := services.Grades.ListByIntern(ctx, intern.ID)
		if len(grades) != 0 {
			t.Fatalf("expected no grades stored, got %+v", grades)
		}
	})

	t.Run("record upserts per criterion", func(t *testing.T) {
		first, err := services.Grades.Record(ctx, intern.ID, criteria.ID, 1.5)
		if err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
		second, err := services.Grades.Record(ctx, intern.ID, criteria.ID, 2)
		if err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected the same grade row, got %d and %d", first.ID, second.ID)
		}
		grades, _ := services.Grades.ListByIntern(ctx, intern.ID)
		if len(grades) != 1 || grades[0].Value != 2 {
			t.Fatalf("unexpected grades %+v", grades)
		}
	})
}
