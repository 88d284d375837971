package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082902)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	title TEXT NOT NULL,
	content JSONB NOT NULL,
	owner_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_owner ON artifacts(owner_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ArtifactRepository) CreateArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) error {
	contentJSON, err := json.Marshal(artifact.Content)
	if err != nil {
		return fmt.Errorf("marshal artifact content: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO artifacts (id, kind, title, content, owner_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`,
		artifact.ID, string(artifact.Kind), artifact.Title, contentJSON, artifact.OwnerID, artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

func (r *ArtifactRepository) GetArtifactByID(ctx context.Context, id string) (*domain.GeneratedArtifact, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, kind, title, content, owner_id, created_at
FROM artifacts
WHERE id = $1
`, id)

	var artifact domain.GeneratedArtifact
	var kind string
	var contentRaw []byte
	err := row.Scan(&artifact.ID, &kind, &artifact.Title, &contentRaw, &artifact.OwnerID, &artifact.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get artifact", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan artifact: %w", err)
	}

	content, err := domain.DecodeContent(contentRaw)
	if err != nil {
		return nil, err
	}
	artifact.Kind = domain.ArtifactKind(kind)
	artifact.Content = content
	return &artifact, nil
}
