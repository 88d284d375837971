package ports

import (
	"context"
	"io"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// IngestRequest carries everything the extraction entry point needs.
type IngestRequest struct {
	RemoteRef         string
	DeclaredMediaType string
	OwnerID           string
}

// DocumentIngestor is the inbound contract for upload and extraction
// orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mediaType, ownerID string, body io.Reader) (*domain.SourceDocument, error)
	Ingest(ctx context.Context, req IngestRequest) (*domain.Transcript, error)
	Reingest(ctx context.Context, documentID string) (*domain.Transcript, error)
	LatestTranscript(ctx context.Context, documentID string) (*domain.Transcript, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// ArtifactExporter is the inbound contract for artifact storage and
// file export.
type ArtifactExporter interface {
	CreateArtifact(ctx context.Context, kind domain.ArtifactKind, title, ownerID string, content domain.ArtifactContent) (*domain.GeneratedArtifact, error)
	Export(ctx context.Context, artifactID string, format domain.TargetFormat) (*domain.SerializedFile, error)
}
