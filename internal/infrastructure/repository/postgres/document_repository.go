package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent instance startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS source_documents (
	id TEXT PRIMARY KEY,
	remote_ref TEXT NOT NULL UNIQUE,
	filename TEXT NOT NULL,
	media_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	owner_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transcripts (
	id TEXT PRIMARY KEY,
	source_document_id TEXT NOT NULL REFERENCES source_documents(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	warnings JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transcripts_document_created
	ON transcripts(source_document_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *domain.SourceDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO source_documents (id, remote_ref, filename, media_type, size_bytes, owner_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		doc.ID, doc.RemoteRef, doc.Filename, doc.DeclaredMediaType, doc.SizeBytes, doc.OwnerID, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert source document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetDocumentByID(ctx context.Context, id string) (*domain.SourceDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, remote_ref, filename, media_type, size_bytes, owner_id, created_at
FROM source_documents
WHERE id = $1
`, id)
	return scanDocument(row, id)
}

func (r *DocumentRepository) GetDocumentByRemoteRef(ctx context.Context, remoteRef string) (*domain.SourceDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, remote_ref, filename, media_type, size_bytes, owner_id, created_at
FROM source_documents
WHERE remote_ref = $1
`, remoteRef)
	return scanDocument(row, remoteRef)
}

func scanDocument(row *sql.Row, key string) (*domain.SourceDocument, error) {
	var doc domain.SourceDocument
	err := row.Scan(
		&doc.ID, &doc.RemoteRef, &doc.Filename, &doc.DeclaredMediaType,
		&doc.SizeBytes, &doc.OwnerID, &doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get source document", fmt.Errorf("key %s", key))
		}
		return nil, fmt.Errorf("scan source document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM source_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete source document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete source document", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DocumentRepository) InsertTranscript(ctx context.Context, transcript *domain.Transcript) error {
	warnings := transcript.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO transcripts (id, source_document_id, content, warnings, created_at)
VALUES ($1,$2,$3,$4,$5)
`,
		transcript.ID, transcript.SourceDocumentID, transcript.Content, warningsJSON, transcript.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

func (r *DocumentRepository) LatestTranscript(ctx context.Context, sourceDocumentID string) (*domain.Transcript, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, source_document_id, content, warnings, created_at
FROM transcripts
WHERE source_document_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, sourceDocumentID)

	var tr domain.Transcript
	var warningsRaw []byte
	err := row.Scan(&tr.ID, &tr.SourceDocumentID, &tr.Content, &warningsRaw, &tr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "latest transcript", fmt.Errorf("document %s", sourceDocumentID))
		}
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	if err := json.Unmarshal(warningsRaw, &tr.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	return &tr, nil
}
