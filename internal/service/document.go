package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/util"

	"go.uber.org/zap"
)

// DocumentService stores uploaded chapters and extracts their text.
type DocumentService interface {
	Ingest(ctx context.Context, sessionID, fileName string, content io.Reader) (*domain.Document, string, error)
	// Record persists an ingested document once the session has accepted it.
	Record(ctx context.Context, doc *domain.Document)
	// Discard removes the stored file of a document the session rejected.
	Discard(doc *domain.Document)
}

type documentService struct {
	outputDir string
	extractor domain.TextExtractor
	documents domain.DocumentRepository
	now       func() time.Time
}

// NewDocumentService creates a DocumentService. documents may be nil.
func NewDocumentService(outputDir string, extractor domain.TextExtractor, documents domain.DocumentRepository) DocumentService {
	return &documentService{
		outputDir: outputDir,
		extractor: extractor,
		documents: documents,
		now:       time.Now,
	}
}

// Ingest writes content to <output dir>/<session>/<id>-<name> and extracts
// its text. The stored file is removed again when extraction fails.
func (s *documentService) Ingest(ctx context.Context, sessionID, fileName string, content io.Reader) (*domain.Document, string, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, "", domain.NewInvalidInputError("file name is empty")
	}

	doc := &domain.Document{
		ID:         util.NewULID(),
		SessionID:  sessionID,
		FileName:   name,
		UploadedAt: s.now().UTC(),
	}
	dir := filepath.Join(s.outputDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", domain.NewInternalError("failed to create upload directory", err)
	}
	doc.Path = filepath.Join(dir, fmt.Sprintf("%s-%s", doc.ID, name))

	if err := writeFile(doc.Path, content); err != nil {
		s.Discard(doc)
		return nil, "", domain.NewInternalError("failed to store upload", err)
	}

	text, err := s.extractor.Extract(ctx, doc.Path)
	if err != nil {
		s.Discard(doc)
		return nil, "", err
	}
	doc.CharCount = utf8.RuneCountInString(text)

	logger.Get().Info("Document ingested",
		zap.String("session_id", sessionID),
		zap.String("document_id", doc.ID),
		zap.Int("chars", doc.CharCount))
	return doc, text, nil
}

func (s *documentService) Record(ctx context.Context, doc *domain.Document) {
	if s.documents == nil || doc == nil {
		return
	}
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		logger.Get().Warn("Failed to record document", zap.String("document_id", doc.ID), zap.Error(err))
	}
}

func (s *documentService) Discard(doc *domain.Document) {
	if doc == nil || doc.Path == "" {
		return
	}
	if err := os.Remove(doc.Path); err != nil && !os.IsNotExist(err) {
		logger.Get().Warn("Failed to remove upload", zap.String("path", doc.Path), zap.Error(err))
	}
}

func writeFile(path string, content io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
