package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lesson-byte/internal/domain"
)

// Columns are aliased to lower case because Oracle reports unquoted
// identifiers in upper case.
const documentColumns = `id AS "id", session_id AS "session_id", file_name AS "file_name",
path AS "path", char_count AS "char_count", uploaded_at AS "uploaded_at"`

// DocumentDatabaseAdapter implements domain.DocumentRepository.
type DocumentDatabaseAdapter struct {
	db DBTX
}

func NewDocumentDatabaseAdapter(db DBTX) domain.DocumentRepository {
	return &DocumentDatabaseAdapter{db: db}
}

func (r *DocumentDatabaseAdapter) SaveDocument(ctx context.Context, doc *domain.Document) error {
	query := `INSERT INTO documents (id, session_id, file_name, path, char_count, uploaded_at)
VALUES (:1, :2, :3, :4, :5, :6)`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.SessionID, doc.FileName, doc.Path, doc.CharCount, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocumentByID returns nil, nil when the document does not exist.
func (r *DocumentDatabaseAdapter) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	query := "SELECT " + documentColumns + " FROM documents WHERE id = :1"
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *DocumentDatabaseAdapter) ListDocumentsBySession(ctx context.Context, sessionID string) ([]*domain.Document, error) {
	var docs []*domain.Document
	query := "SELECT " + documentColumns + " FROM documents WHERE session_id = :1 ORDER BY uploaded_at"
	if err := r.db.SelectContext(ctx, &docs, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list documents for session %s: %w", sessionID, err)
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return docs, nil
}
