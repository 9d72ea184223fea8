package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"lesson-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages []string
	errAt int
}

func (f fakePages) NumPage() int { return len(f.pages) }

func (f fakePages) PageText(n int) (string, error) {
	if n == f.errAt {
		return "", errors.New("broken content stream")
	}
	return f.pages[n-1], nil
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

func TestExtractPages_JoinsAndNormalizes(t *testing.T) {
	src := fakePages{pages: []string{"Chapter 1\n\nLight   travels\tin straight lines.", "", "  Reflection\nis   next. "}}

	text, err := extractPages(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, "Chapter 1 Light travels in straight lines. Reflection is next.", text)
	assert.False(t, multiSpace.MatchString(text))
}

func TestExtractPages_PageErrorYieldsNoText(t *testing.T) {
	src := fakePages{pages: []string{"good page", "bad page", "another"}, errAt: 2}

	text, err := extractPages(context.Background(), src)

	assert.Empty(t, text)
	assert.True(t, domain.IsCode(err, domain.CodeExtractionFailed))
}

func TestExtractPages_EmptyDocument(t *testing.T) {
	text, err := extractPages(context.Background(), fakePages{pages: []string{" ", "\n"}})

	assert.Empty(t, text)
	assert.True(t, domain.IsCode(err, domain.CodeExtractionFailed))
}

func TestExtractPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text, err := extractPages(ctx, fakePages{pages: []string{"text"}})

	assert.Empty(t, text)
	assert.True(t, domain.IsCode(err, domain.CodeExtractionFailed))
}

func TestPDFExtractor_MissingFile(t *testing.T) {
	text, err := NewPDFExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Empty(t, text)
	assert.True(t, domain.IsCode(err, domain.CodeExtractionFailed))
}

func TestPDFExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is plain text, not a pdf"), 0o644))

	text, err := NewPDFExtractor().Extract(context.Background(), path)

	assert.Empty(t, text)
	assert.True(t, domain.IsCode(err, domain.CodeExtractionFailed))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\n\nb\t\t c  "))
	assert.Equal(t, "", NormalizeWhitespace(" \n\t "))
}
