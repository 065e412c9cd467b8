package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/internship-tracker/internal/persistence"
)

// InternReader loads interns.
type InternReader interface {
	Get(ctx context.Context, id int64) (*persistence.Intern, error)
}

// VenueReader loads venues.
type VenueReader interface {
	Get(ctx context.Context, id int64) (*persistence.Venue, error)
}

// DocumentLister lists an intern's documents.
type DocumentLister interface {
	ListByIntern(ctx context.Context, internID int64) ([]persistence.Document, error)
}

// MeetingLister lists an intern's meetings.
type MeetingLister interface {
	ListByIntern(ctx context.Context, internID int64) ([]persistence.Meeting, error)
}

// ObservationLister lists an intern's observations.
type ObservationLister interface {
	ListByIntern(ctx context.Context, internID int64) ([]persistence.Observation, error)
}

// GradeLister lists an intern's grades.
type GradeLister interface {
	ListByIntern(ctx context.Context, internID int64) ([]persistence.Grade, error)
}

// CriteriaLister lists the evaluation rubric.
type CriteriaLister interface {
	List(ctx context.Context) ([]persistence.EvaluationCriteria, error)
}

// Deps lists the read-only collaborators of a Builder.
type Deps struct {
	Interns      InternReader
	Venues       VenueReader
	Documents    DocumentLister
	Meetings     MeetingLister
	Observations ObservationLister
	Grades       GradeLister
	Criteria     CriteriaLister
	Logger       *slog.Logger
}

// GradeLine pairs a criterion with the intern's score, if any.
type GradeLine struct {
	Criteria persistence.EvaluationCriteria
	Value    *float64
}

// Boletim is the resolved data of one intern's report card.
type Boletim struct {
	Intern       persistence.Intern
	Venue        *persistence.Venue
	Grades       []GradeLine
	Total        float64
	MaxTotal     float64
	Documents    []persistence.Document
	Meetings     []persistence.Meeting
	Attended     int
	Observations []persistence.Observation
}

// Builder assembles boletins from the entity services.
type Builder struct {
	deps   Deps
	logger *slog.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(deps Deps) *Builder {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{deps: deps, logger: logger.With("component", "report")}
}

// Collect resolves everything the boletim of internID shows.
func (b *Builder) Collect(ctx context.Context, internID int64) (Boletim, error) {
	intern, err := b.deps.Interns.Get(ctx, internID)
	if err != nil {
		return Boletim{}, err
	}
	if intern == nil {
		return Boletim{}, fmt.Errorf("intern %d: %w", internID, persistence.ErrNotFound)
	}
	out := Boletim{Intern: *intern}

	if intern.VenueID != nil {
		if out.Venue, err = b.deps.Venues.Get(ctx, *intern.VenueID); err != nil {
			return Boletim{}, err
		}
	}

	criteria, err := b.deps.Criteria.List(ctx)
	if err != nil {
		return Boletim{}, err
	}
	grades, err := b.deps.Grades.ListByIntern(ctx, internID)
	if err != nil {
		return Boletim{}, err
	}
	byCriteria := make(map[int64]float64, len(grades))
	for _, grade := range grades {
		byCriteria[grade.CriteriaID] = grade.Value
	}
	for _, c := range criteria {
		line := GradeLine{Criteria: c}
		if value, ok := byCriteria[c.ID]; ok {
			v := value
			line.Value = &v
			out.Total += value
		}
		out.MaxTotal += c.Weight
		out.Grades = append(out.Grades, line)
	}

	if out.Documents, err = b.deps.Documents.ListByIntern(ctx, internID); err != nil {
		return Boletim{}, err
	}
	if out.Meetings, err = b.deps.Meetings.ListByIntern(ctx, internID); err != nil {
		return Boletim{}, err
	}
	for _, meeting := range out.Meetings {
		if meeting.InternPresent {
			out.Attended++
		}
	}
	if out.Observations, err = b.deps.Observations.ListByIntern(ctx, internID); err != nil {
		return Boletim{}, err
	}
	return out, nil
}

// Export collects the boletim of internID and writes it as a workbook to w.
func (b *Builder) Export(ctx context.Context, internID int64, w io.Writer) error {
	data, err := b.Collect(ctx, internID)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to collect boletim", "intern_id", internID, "error", err)
		return err
	}
	if err := WriteWorkbook(data, w); err != nil {
		b.logger.ErrorContext(ctx, "failed to write boletim", "intern_id", internID, "error", err)
		return err
	}
	b.logger.InfoContext(ctx, "boletim exported", "intern_id", internID)
	return nil
}

const boletimSheet = "Boletim"

// WriteWorkbook renders data as a single-sheet workbook.
func WriteWorkbook(data Boletim, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(boletimSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	f.SetColWidth(boletimSheet, "A", "A", 32)
	f.SetColWidth(boletimSheet, "B", "D", 18)

	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	sheet := &sheetWriter{f: f, name: boletimSheet, row: 1, sectionStyle: sectionStyle}

	sheet.section("Estagiário")
	sheet.pair("Nome", data.Intern.Name)
	sheet.pair("RA", data.Intern.RegistrationNumber)
	sheet.pair("Período", data.Intern.Term)
	sheet.pair("Email", data.Intern.Email)
	sheet.pair("Início", data.Intern.StartDate)
	sheet.pair("Término", data.Intern.EndDate)
	sheet.pair("Dias", data.Intern.WorkingDays)
	sheet.pair("Horários", data.Intern.WorkingHours)

	sheet.section("Local")
	if data.Venue != nil {
		sheet.pair("Local", data.Venue.Name)
		sheet.pair("Endereço", data.Venue.Address)
		sheet.pair("Supervisor", data.Venue.SupervisorName)
		sheet.pair("Email do supervisor", data.Venue.SupervisorEmail)
		sheet.pair("Telefone do supervisor", data.Venue.SupervisorPhone)
	} else {
		sheet.pair("Local", "Sem local")
	}

	sheet.section("Notas")
	sheet.values("Critério", "Nota", "Peso")
	for _, line := range data.Grades {
		var value any = "-"
		if line.Value != nil {
			value = *line.Value
		}
		sheet.values(line.Criteria.Name, value, line.Criteria.Weight)
	}
	sheet.values("Total", data.Total, data.MaxTotal)

	sheet.section("Documentos")
	sheet.values("Documento", "Status", "Feedback")
	for _, doc := range data.Documents {
		sheet.values(doc.Name, doc.Status, doc.Feedback)
	}

	sheet.section("Reuniões")
	sheet.values("Data", "Presença")
	for _, meeting := range data.Meetings {
		sheet.values(meeting.Date, presence(meeting.InternPresent))
	}
	sheet.values("Presenças", fmt.Sprintf("%d de %d", data.Attended, len(data.Meetings)))

	sheet.section("Observações")
	for _, obs := range data.Observations {
		sheet.values(obs.LastUpdate.Format("02/01/2006"), obs.Text)
	}

	if sheet.err != nil {
		return fmt.Errorf("failed to fill sheet: %w", sheet.err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func presence(present bool) string {
	if present {
		return "Presente"
	}
	return "Ausente"
}

// sheetWriter appends rows top to bottom and keeps the first error.
type sheetWriter struct {
	f            *excelize.File
	name         string
	row          int
	sectionStyle int
	err          error
}

func (s *sheetWriter) section(title string) {
	if s.row > 1 {
		s.row++
	}
	cell := s.cell(1)
	s.values(strings.ToUpper(title))
	if s.err == nil {
		s.err = s.f.SetCellStyle(s.name, cell, cell, s.sectionStyle)
	}
}

func (s *sheetWriter) pair(label, value string) {
	s.values(label, value)
}

func (s *sheetWriter) values(values ...any) {
	if s.err != nil {
		return
	}
	cell := s.cell(1)
	s.err = s.f.SetSheetRow(s.name, cell, &values)
	s.row++
}

func (s *sheetWriter) cell(col int) string {
	name, _ := excelize.CoordinatesToCellName(col, s.row)
	return name
}
