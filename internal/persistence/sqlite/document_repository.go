package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/internship-tracker/internal/persistence"
)

const documentColumns = "id, intern_id, document_name, status, feedback, last_update"

// DocumentRepository implements persistence.DocumentRepository using SQLite.
type DocumentRepository struct {
	gateway *Gateway
}

// NewDocumentRepository creates a new SQLite document repository.
func NewDocumentRepository(gateway *Gateway) *DocumentRepository {
	return &DocumentRepository{gateway: gateway}
}

// CreateDocument inserts a document and returns the assigned identifier.
func (r *DocumentRepository) CreateDocument(ctx context.Context, document persistence.Document) (int64, error) {
	if document.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}
	return r.insert(ctx, document)
}

func (r *DocumentRepository) insert(ctx context.Context, document persistence.Document) (int64, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, `
		INSERT INTO documents (intern_id, document_name, status, feedback, last_update)
		VALUES (?, ?, ?, ?, ?)`,
		document.InternID,
		document.Name,
		document.Status,
		nullString(document.Feedback),
		nullString(formatTimestamp(document.LastUpdate)),
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// CreateDocuments inserts the batch atomically.
func (r *DocumentRepository) CreateDocuments(ctx context.Context, documents []persistence.Document) error {
	if len(documents) == 0 {
		return nil
	}
	return r.gateway.WithTransaction(ctx, func(ctx context.Context) error {
		for _, document := range documents {
			if document.ID != 0 {
				return persistence.ErrConstraintViolation
			}
			if _, err := r.insert(ctx, document); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateDocument overwrites name, status, feedback and last_update.
func (r *DocumentRepository) UpdateDocument(ctx context.Context, document persistence.Document) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, `
		UPDATE documents
		SET intern_id = ?, document_name = ?, status = ?, feedback = ?, last_update = ?
		WHERE id = ?`,
		document.InternID,
		document.Name,
		document.Status,
		nullString(document.Feedback),
		nullString(formatTimestamp(document.LastUpdate)),
		document.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteDocument removes a document.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetDocument retrieves a document by identifier.
func (r *DocumentRepository) GetDocument(ctx context.Context, id int64) (persistence.Document, error) {
	row := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// ListDocumentsByIntern returns an intern's documents in insertion order.
func (r *DocumentRepository) ListDocumentsByIntern(ctx context.Context, internID int64) ([]persistence.Document, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE intern_id = ? ORDER BY id ASC", internID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var documents []persistence.Document
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return documents, nil
}

// CountDocumentsByIntern returns how many documents an intern has.
func (r *DocumentRepository) CountDocumentsByIntern(ctx context.Context, internID int64) (int, error) {
	var count int
	err := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE intern_id = ?", internID).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func scanDocument(row rowScanner) (persistence.Document, error) {
	var document persistence.Document
	var feedback, lastUpdate sql.NullString
	if err := row.Scan(&document.ID, &document.InternID, &document.Name, &document.Status, &feedback, &lastUpdate); err != nil {
		return persistence.Document{}, mapError(err)
	}
	document.Feedback = feedback.String
	ts, err := parseTimestamp(lastUpdate)
	if err != nil {
		return persistence.Document{}, err
	}
	document.LastUpdate = ts
	return document, nil
}
