package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/example/internship-tracker/internal/logging"
	"github.com/example/internship-tracker/internal/persistence"
)

// InternStore is the subset of the intern service used by imports.
type InternStore interface {
	FindByName(ctx context.Context, name string) (*persistence.Intern, error)
	AddImported(ctx context.Context, intern *persistence.Intern) (int64, error)
	UpdateImported(ctx context.Context, intern *persistence.Intern) (bool, error)
}

// VenueStore is the subset of the venue service used by imports.
type VenueStore interface {
	FindByName(ctx context.Context, name string) (*persistence.Venue, error)
	Add(ctx context.Context, venue *persistence.Venue) (int64, error)
	Update(ctx context.Context, venue *persistence.Venue) (bool, error)
}

// ChecklistSeeder creates the default documents of a new intern.
type ChecklistSeeder interface {
	CreateDefaults(ctx context.Context, internID int64) (int, error)
}

// Deps lists the collaborators of a Reconciler.
type Deps struct {
	Transactor persistence.Transactor
	Interns    InternStore
	Venues     VenueStore
	Documents  ChecklistSeeder
	Now        func() time.Time
	Logger     *slog.Logger
}

// RowFailure describes a row that was not applied.
type RowFailure struct {
	Line   int
	Name   string
	Reason string
}

// Report summarizes one import run.
type Report struct {
	RunID  string
	Source string
	Digest string

	Rows              int
	Skipped           int
	Failed            int
	DuplicatesIgnored int

	VenuesCreated int
	VenuesUpdated int
	VenuesReused  int

	InternsCreated int
	InternsUpdated int

	DocumentsSeeded   int
	ChecklistFailures int

	Failures  []RowFailure
	StartedAt time.Time
	Duration  time.Duration
}

// Applied returns the number of rows whose writes were committed.
func (r Report) Applied() int {
	return r.InternsCreated + r.InternsUpdated
}

var errRowNotApplied = errors.New("importer: storage did not apply the row")

var floatRegistration = regexp.MustCompile(`^(\d+)\.0+$`)

// Reconciler upserts venues and interns from roster tables.
type Reconciler struct {
	tx        persistence.Transactor
	interns   InternStore
	venues    VenueStore
	documents ChecklistSeeder
	now       func() time.Time
	logger    *slog.Logger
}

// NewReconciler constructs a reconciler.
func NewReconciler(deps Deps) *Reconciler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		tx:        deps.Transactor,
		interns:   deps.Interns,
		venues:    deps.Venues,
		documents: deps.Documents,
		now:       now,
		logger:    logger,
	}
}

// ImportFile reads the roster at path and reconciles it.
func (r *Reconciler) ImportFile(ctx context.Context, path string, opts ReadOptions) (Report, error) {
	table, err := ReadFile(ctx, path, opts)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to read roster", "source", path, "error", err)
		return Report{Source: path}, err
	}
	return r.Run(ctx, table)
}

// rowTally holds the counters of one row until its transaction commits.
type rowTally struct {
	venuesCreated   int
	venuesUpdated   int
	venuesReused    int
	internCreated   bool
	documentsSeeded int
	checklistFailed bool
}

// Run applies every row of table in a single forward pass. Each row commits
// in its own transaction; a failing row is rolled back, recorded and
// skipped. Venue names resolve once per run and later rows reuse the cached
// identifier. The first row carrying a given intern name wins and later rows
// with that name are ignored.
func (r *Reconciler) Run(ctx context.Context, table Table) (report Report, err error) {
	report = Report{
		RunID:     uuid.NewString(),
		Source:    table.Source,
		Digest:    table.Digest,
		StartedAt: r.now(),
	}

	logger := r.logger.With("run_id", report.RunID, "source", table.Source)
	ctx = logging.ContextWithLogger(ctx, logger)
	defer func() {
		report.Duration = r.now().Sub(report.StartedAt)
		if err != nil {
			logger.ErrorContext(ctx, "import aborted", "error", err, "rows", report.Rows)
			return
		}
		logger.InfoContext(ctx, "import finished",
			"rows", report.Rows,
			"skipped", report.Skipped,
			"failed", report.Failed,
			"duplicates", report.DuplicatesIgnored,
			"interns_created", report.InternsCreated,
			"interns_updated", report.InternsUpdated,
			"venues_created", report.VenuesCreated,
			"venues_updated", report.VenuesUpdated,
			"checklist_failures", report.ChecklistFailures,
		)
	}()

	for _, key := range RequiredColumns {
		if !table.Has(key) {
			return report, fmt.Errorf("%w: missing column %s", ErrImportFormat, key)
		}
	}
	logger.InfoContext(ctx, "import started", "digest", table.Digest, "rows", len(table.Rows))

	venueCache := make(map[string]int64)
	seenInterns := make(map[string]bool)

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Rows++

		name := row.Get(ColName)
		registration := normalizeRegistration(row.Get(ColRegistration))
		if name == "" || registration == "" {
			report.Skipped++
			logger.DebugContext(ctx, "row skipped: name or registration missing", "line", row.Line)
			continue
		}

		nameKey := persistence.NameKey(name)
		if seenInterns[nameKey] {
			report.DuplicatesIgnored++
			logger.InfoContext(ctx, "row ignored: intern already seen in this file", "line", row.Line, "name", name)
			continue
		}
		seenInterns[nameKey] = true

		staged := make(map[string]int64)
		var tally rowTally
		rowErr := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
			return r.applyRow(ctx, table, row, registration, venueCache, staged, &tally)
		})
		if rowErr != nil {
			report.Failed++
			report.Failures = append(report.Failures, RowFailure{Line: row.Line, Name: name, Reason: rowErr.Error()})
			logger.WarnContext(ctx, "row failed", "line", row.Line, "name", name, "error", rowErr)
			continue
		}

		for key, id := range staged {
			venueCache[key] = id
		}
		report.VenuesCreated += tally.venuesCreated
		report.VenuesUpdated += tally.venuesUpdated
		report.VenuesReused += tally.venuesReused
		report.DocumentsSeeded += tally.documentsSeeded
		if tally.checklistFailed {
			report.ChecklistFailures++
		}
		if tally.internCreated {
			report.InternsCreated++
		} else {
			report.InternsUpdated++
		}
	}

	return report, nil
}

func (r *Reconciler) applyRow(ctx context.Context, table Table, row Row, registration string, cache, staged map[string]int64, tally *rowTally) error {
	venueID, err := r.resolveVenue(ctx, table, row, cache, staged, tally)
	if err != nil {
		return err
	}

	name := row.Get(ColName)
	existing, err := r.interns.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("look up intern: %w", err)
	}

	if existing != nil {
		intern := *existing
		intern.Name = name
		intern.RegistrationNumber = registration
		if table.Has(ColVenue) {
			intern.VenueID = venueID
		}
		applyInternColumns(table, row, &intern)
		ok, err := r.interns.UpdateImported(ctx, &intern)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("update intern %d: %w", intern.ID, errRowNotApplied)
		}
		return nil
	}

	intern := persistence.Intern{
		Name:               name,
		RegistrationNumber: registration,
		VenueID:            venueID,
	}
	applyInternColumns(table, row, &intern)
	id, err := r.interns.AddImported(ctx, &intern)
	if err != nil {
		return err
	}
	tally.internCreated = true

	seeded, err := r.documents.CreateDefaults(ctx, id)
	if err != nil {
		tally.checklistFailed = true
		logging.FromContext(ctx).WarnContext(ctx, "checklist seeding failed", "intern_id", id, "error", err)
		return nil
	}
	tally.documentsSeeded = seeded
	return nil
}

// resolveVenue returns the venue for the row, or nil when the row names none.
// The first occurrence of a name in a run overwrites the supervisor columns
// present in the file; later occurrences reuse the cached identifier.
func (r *Reconciler) resolveVenue(ctx context.Context, table Table, row Row, cache, staged map[string]int64, tally *rowTally) (*int64, error) {
	name := row.Get(ColVenue)
	if name == "" {
		return nil, nil
	}
	key := persistence.NameKey(name)
	if id, ok := cache[key]; ok {
		tally.venuesReused++
		return &id, nil
	}

	existing, err := r.venues.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("look up venue: %w", err)
	}

	if existing != nil {
		venue := *existing
		applyVenueColumns(table, row, &venue)
		ok, err := r.venues.Update(ctx, &venue)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("update venue %d: %w", venue.ID, errRowNotApplied)
		}
		tally.venuesUpdated++
		staged[key] = venue.ID
		return &venue.ID, nil
	}

	venue := persistence.Venue{Name: name}
	applyVenueColumns(table, row, &venue)
	id, err := r.venues.Add(ctx, &venue)
	if err != nil {
		return nil, err
	}
	tally.venuesCreated++
	staged[key] = id
	return &id, nil
}

func applyVenueColumns(table Table, row Row, venue *persistence.Venue) {
	setIfPresent(table, row, ColSupervisorName, &venue.SupervisorName)
	setIfPresent(table, row, ColSupervisorEmail, &venue.SupervisorEmail)
	setIfPresent(table, row, ColSupervisorPhone, &venue.SupervisorPhone)
}

// applyInternColumns copies the optional intern columns. Working days has no
// roster column and is left untouched.
func applyInternColumns(table Table, row Row, intern *persistence.Intern) {
	setIfPresent(table, row, ColTerm, &intern.Term)
	setIfPresent(table, row, ColEmail, &intern.Email)
	setIfPresent(table, row, ColStartDate, &intern.StartDate)
	setIfPresent(table, row, ColEndDate, &intern.EndDate)
	setIfPresent(table, row, ColWorkingHours, &intern.WorkingHours)
}

func setIfPresent(table Table, row Row, key string, field *string) {
	if table.Has(key) {
		*field = row.Get(key)
	}
}

// normalizeRegistration undoes spreadsheet float coercion, so "12345.0"
// becomes "12345".
func normalizeRegistration(value string) string {
	if m := floatRegistration.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}
