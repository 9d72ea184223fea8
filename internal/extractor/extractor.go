// Package extractor turns PDF chapters into a single normalized text blob.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// pageSeparator joins consecutive pages before whitespace is collapsed.
const pageSeparator = "\n\n"

// pageSource is the part of a paginated document the extractor needs.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.reader.NumPage()
}

func (p pdfPages) PageText(n int) (string, error) {
	page := p.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// PDFExtractor implements domain.TextExtractor with github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor
func NewPDFExtractor() domain.TextExtractor {
	return &PDFExtractor{}
}

// Extract reads every page of the PDF at path. Any failure, including a
// document without extractable text, yields an EXTRACTION_FAILED error and no
// text at all.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (text string, err error) {
	l := logger.Get()

	// The PDF library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			l.Error("PDF library panicked while reading document", zap.String("path", path), zap.Any("panic", r))
			text, err = "", domain.NewExtractionError("could not read PDF", fmt.Errorf("panic: %v", r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		l.Warn("Failed to open PDF", zap.String("path", path), zap.Error(err))
		return "", domain.NewExtractionError("could not open PDF", err)
	}
	defer f.Close()

	text, err = extractPages(ctx, pdfPages{reader: reader})
	if err != nil {
		l.Warn("Failed to extract PDF text", zap.String("path", path), zap.Error(err))
		return "", err
	}

	l.Info("Extracted PDF text", zap.String("path", path), zap.Int("pages", reader.NumPage()), zap.Int("chars", len(text)))
	return text, nil
}

func extractPages(ctx context.Context, src pageSource) (string, error) {
	var sb strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", domain.NewExtractionError("extraction cancelled", err)
		}
		pageText, err := src.PageText(i)
		if err != nil {
			return "", domain.NewExtractionError(fmt.Sprintf("could not read page %d", i), err)
		}
		sb.WriteString(pageText)
		sb.WriteString(pageSeparator)
	}

	text := NormalizeWhitespace(sb.String())
	if text == "" {
		return "", domain.NewExtractionError("document contains no extractable text", nil)
	}
	return text, nil
}

// NormalizeWhitespace collapses every run of whitespace to a single space and
// trims both ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
