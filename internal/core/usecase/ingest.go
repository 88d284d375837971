package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
)

// IngestDocumentUseCase drives upload and the extraction pipeline:
// fetch bytes, dispatch to an extractor, persist the normalized text as a
// new transcript version.
type IngestDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
}

var _ ports.DocumentIngestor = (*IngestDocumentUseCase)(nil)

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
	}
}

// Upload stores the raw bytes and records the immutable source document.
// It does not extract; extraction is a separate, repeatable step.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mediaType, ownerID string,
	body io.Reader,
) (*domain.SourceDocument, error) {
	if !uc.extractor.Supports(mediaType) {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload document",
			fmt.Errorf("media type %q", mediaType))
	}

	id := uuid.NewString()
	remoteRef := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	counted := &countingReader{r: body}
	if err := uc.storage.Save(ctx, remoteRef, counted); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.SourceDocument{
		ID:                id,
		RemoteRef:         remoteRef,
		Filename:          filename,
		DeclaredMediaType: mediaType,
		SizeBytes:         counted.n,
		OwnerID:           ownerID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := uc.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}
	return doc, nil
}

// Ingest resolves the remote ref, runs extraction and appends a transcript.
// The source document row is created on first sight of the ref and survives
// a failed extraction (file kept, no transcript).
func (uc *IngestDocumentUseCase) Ingest(ctx context.Context, req ports.IngestRequest) (*domain.Transcript, error) {
	if strings.TrimSpace(req.RemoteRef) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", fmt.Errorf("remote ref is required"))
	}

	data, err := uc.fetchBytes(ctx, req.RemoteRef)
	if err != nil {
		return nil, err
	}

	doc, err := uc.repo.GetDocumentByRemoteRef(ctx, req.RemoteRef)
	if domain.IsKind(err, domain.ErrNotFound) {
		doc = &domain.SourceDocument{
			ID:                uuid.NewString(),
			RemoteRef:         req.RemoteRef,
			Filename:          filepath.Base(req.RemoteRef),
			DeclaredMediaType: req.DeclaredMediaType,
			SizeBytes:         int64(len(data)),
			OwnerID:           req.OwnerID,
			CreatedAt:         time.Now().UTC(),
		}
		if err := uc.repo.CreateDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("create document record: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("look up document by ref: %w", err)
	}

	return uc.extractAndPersist(ctx, doc, req.DeclaredMediaType, data)
}

// Reingest runs extraction again for an existing document. Deliberately not
// idempotent: every run appends a new transcript version so earlier
// extraction runs stay auditable.
func (uc *IngestDocumentUseCase) Reingest(ctx context.Context, documentID string) (*domain.Transcript, error) {
	doc, err := uc.repo.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	data, err := uc.fetchBytes(ctx, doc.RemoteRef)
	if err != nil {
		return nil, err
	}
	return uc.extractAndPersist(ctx, doc, doc.DeclaredMediaType, data)
}

func (uc *IngestDocumentUseCase) LatestTranscript(ctx context.Context, documentID string) (*domain.Transcript, error) {
	if _, err := uc.repo.GetDocumentByID(ctx, documentID); err != nil {
		return nil, err
	}
	return uc.repo.LatestTranscript(ctx, documentID)
}

// DeleteDocument removes the document record; transcripts go with it by
// cascade.
func (uc *IngestDocumentUseCase) DeleteDocument(ctx context.Context, documentID string) error {
	return uc.repo.DeleteDocument(ctx, documentID)
}

func (uc *IngestDocumentUseCase) fetchBytes(ctx context.Context, remoteRef string) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, remoteRef)
	if err != nil {
		return nil, domain.WrapError(domain.ErrFetchFailed, "fetch source bytes", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, domain.WrapError(domain.ErrFetchFailed, "read source bytes", err)
	}
	return data, nil
}

func (uc *IngestDocumentUseCase) extractAndPersist(
	ctx context.Context,
	doc *domain.SourceDocument,
	mediaType string,
	data []byte,
) (*domain.Transcript, error) {
	outcome, err := uc.extractor.Extract(ctx, mediaType, data)
	if err != nil {
		return nil, err
	}

	// The insert is a single atomic write; a cancelled context must not
	// leave a partial transcript behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transcript := &domain.Transcript{
		ID:               uuid.NewString(),
		SourceDocumentID: doc.ID,
		Content:          outcome.Text,
		Warnings:         outcome.Warnings,
		CreatedAt:        time.Now().UTC(),
	}
	if err := uc.repo.InsertTranscript(ctx, transcript); err != nil {
		return nil, fmt.Errorf("insert transcript: %w", err)
	}
	return transcript, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || strings.Trim(base, "._") == "" {
		return "document.bin"
	}
	return base
}
