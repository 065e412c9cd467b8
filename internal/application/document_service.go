package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

// DefaultDocumentStatus is the status given to seeded checklist items.
const DefaultDocumentStatus = "Pendente"

// DefaultChecklist lists the documents every new intern must deliver.
var DefaultChecklist = []string{
	"Termo de Compromisso",
	"Plano de Atividades",
	"Relatório Parcial",
	"Relatório Final",
	"Ficha de Avaliação do Supervisor",
}

// Checklist configures the documents seeded by CreateDefaults.
type Checklist struct {
	Names  []string
	Status string
}

var documentRequiredFields = []validation.Field[persistence.Document]{
	{Label: "Estagiário", Value: func(d persistence.Document) any { return positiveID(d.InternID) }},
	{Label: "Documento", Value: func(d persistence.Document) any { return d.Name }},
}

// DocumentService manages the paperwork checklist of interns.
type DocumentService struct {
	documents persistence.DocumentRepository
	checklist Checklist
	now       func() time.Time
	logger    *slog.Logger
}

// NewDocumentService constructs a document service seeding DefaultChecklist.
func NewDocumentService(documents persistence.DocumentRepository, now func() time.Time) *DocumentService {
	return NewDocumentServiceWithLogger(documents, Checklist{}, now, nil)
}

// NewDocumentServiceWithLogger constructs a document service with a custom
// checklist and logger. Empty checklist fields fall back to the defaults.
func NewDocumentServiceWithLogger(documents persistence.DocumentRepository, checklist Checklist, now func() time.Time, logger *slog.Logger) *DocumentService {
	if now == nil {
		now = time.Now
	}
	if len(checklist.Names) == 0 {
		checklist.Names = DefaultChecklist
	}
	if checklist.Status == "" {
		checklist.Status = DefaultDocumentStatus
	}
	return &DocumentService{
		documents: documents,
		checklist: checklist,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *DocumentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DocumentService", operation, attrs...)
}

// Add validates and persists a single document.
func (s *DocumentService) Add(ctx context.Context, document *persistence.Document) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("DocumentService is nil")
	}
	if document == nil {
		return 0, fmt.Errorf("document is nil")
	}

	logger := s.loggerWith(ctx, "Add", "intern_id", document.InternID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add document", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("document_id", id).InfoContext(ctx, "document added")
	}()

	if document.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	if err = s.prepare(document); err != nil {
		return 0, err
	}

	id, err = s.documents.CreateDocument(ctx, *document)
	if err != nil {
		return 0, err
	}
	document.ID = id
	return id, nil
}

// Update overwrites the stored document and refreshes its timestamp.
func (s *DocumentService) Update(ctx context.Context, document *persistence.Document) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("DocumentService is nil")
	}
	if document == nil || document.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Update", "document_id", document.ID)
	if err := s.prepare(document); err != nil {
		logger.ErrorContext(ctx, "failed to update document", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	ok, err := s.documents.UpdateDocument(ctx, *document)
	return writeResult(ctx, logger, "update document", ok, err), nil
}

// SetStatus changes the status and feedback of an existing document.
func (s *DocumentService) SetStatus(ctx context.Context, id int64, status, feedback string) (bool, error) {
	if id == 0 {
		return false, ErrMissingIdentity
	}
	document, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if document == nil {
		return false, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	document.Status = status
	document.Feedback = feedback
	return s.Update(ctx, document)
}

// Delete removes document.
func (s *DocumentService) Delete(ctx context.Context, document persistence.Document) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("DocumentService is nil")
	}
	if document.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "document_id", document.ID)
	ok, err := s.documents.DeleteDocument(ctx, document.ID)
	return writeResult(ctx, logger, "delete document", ok, err), nil
}

// Get returns the document with id, or nil.
func (s *DocumentService) Get(ctx context.Context, id int64) (*persistence.Document, error) {
	return lookup(s.documents.GetDocument(ctx, id))
}

// ListByIntern returns the documents of an intern in insertion order.
func (s *DocumentService) ListByIntern(ctx context.Context, internID int64) ([]persistence.Document, error) {
	return s.documents.ListDocumentsByIntern(ctx, internID)
}

// CreateDefaults seeds the checklist for internID when the intern has no
// documents yet and returns the number of rows inserted.
func (s *DocumentService) CreateDefaults(ctx context.Context, internID int64) (created int, err error) {
	if s == nil {
		return 0, fmt.Errorf("DocumentService is nil")
	}
	logger := s.loggerWith(ctx, "CreateDefaults", "intern_id", internID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed checklist", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "checklist seeded", "documents", created)
	}()

	if internID <= 0 {
		return 0, ErrMissingIdentity
	}

	count, err := s.documents.CountDocumentsByIntern(ctx, internID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	stamp := s.now().UTC()
	batch := make([]persistence.Document, 0, len(s.checklist.Names))
	for _, name := range s.checklist.Names {
		batch = append(batch, persistence.Document{
			InternID:   internID,
			Name:       name,
			Status:     s.checklist.Status,
			LastUpdate: stamp,
		})
	}
	if err = s.documents.CreateDocuments(ctx, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

func (s *DocumentService) prepare(document *persistence.Document) error {
	trimAll(&document.Name, &document.Status, &document.Feedback)
	if vErr := requireFields(*document, documentRequiredFields); vErr.HasErrors() {
		return vErr
	}
	if document.Status == "" {
		document.Status = s.checklist.Status
	}
	document.LastUpdate = s.now().UTC()
	return nil
}

// positiveID maps unset foreign keys to nil so required-field checks flag them.
func positiveID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}
