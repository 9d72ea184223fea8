package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/util"
)

// artifactRow mirrors media_artifacts; concept may be NULL.
type artifactRow struct {
	ID          string         `db:"id"`
	SessionID   string         `db:"session_id"`
	Concept     sql.NullString `db:"concept"`
	Kind        string         `db:"kind"`
	JobID       string         `db:"job_id"`
	ArtifactURL string         `db:"artifact_url"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r artifactRow) toDomain() *domain.MediaArtifact {
	return &domain.MediaArtifact{
		ID:          r.ID,
		SessionID:   r.SessionID,
		Concept:     util.NullStringToString(r.Concept),
		Kind:        domain.MediaKind(r.Kind),
		JobID:       r.JobID,
		ArtifactURL: r.ArtifactURL,
		CreatedAt:   r.CreatedAt,
	}
}

// ArtifactDatabaseAdapter implements domain.ArtifactRepository.
type ArtifactDatabaseAdapter struct {
	db DBTX
}

func NewArtifactDatabaseAdapter(db DBTX) domain.ArtifactRepository {
	return &ArtifactDatabaseAdapter{db: db}
}

func (r *ArtifactDatabaseAdapter) SaveArtifact(ctx context.Context, a *domain.MediaArtifact) error {
	query := `INSERT INTO media_artifacts (id, session_id, concept, kind, job_id, artifact_url, created_at)
VALUES (:1, :2, :3, :4, :5, :6, :7)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.SessionID, util.StringToNullString(a.Concept), string(a.Kind), a.JobID, a.ArtifactURL, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert media artifact %s: %w", a.ID, err)
	}
	return nil
}

func (r *ArtifactDatabaseAdapter) ListArtifactsBySession(ctx context.Context, sessionID string) ([]*domain.MediaArtifact, error) {
	var rows []artifactRow
	query := `SELECT id AS "id", session_id AS "session_id", concept AS "concept", kind AS "kind",
job_id AS "job_id", artifact_url AS "artifact_url", created_at AS "created_at"
FROM media_artifacts WHERE session_id = :1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list media artifacts for session %s: %w", sessionID, err)
	}
	artifacts := make([]*domain.MediaArtifact, len(rows))
	for i, row := range rows {
		artifacts[i] = row.toDomain()
	}
	return artifacts, nil
}
