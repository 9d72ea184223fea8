package domain

import "context"

// TextGenerator sends one filled prompt to a language model and returns its
// raw completion.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextExtractor turns a paginated document into a single normalized text.
// It returns an EXTRACTION_FAILED error rather than partial text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// DocumentRepository records uploaded documents.
type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc *Document) error
	GetDocumentByID(ctx context.Context, id string) (*Document, error)
	ListDocumentsBySession(ctx context.Context, sessionID string) ([]*Document, error)
}

// ArtifactRepository records the result URLs of finished render jobs.
type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, artifact *MediaArtifact) error
	ListArtifactsBySession(ctx context.Context, sessionID string) ([]*MediaArtifact, error)
}
