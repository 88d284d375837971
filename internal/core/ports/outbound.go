package ports

import (
	"context"
	"io"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// ObjectStorage stores and resolves source document bytes by remote ref.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentRepository persists source documents and their transcript versions.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *domain.SourceDocument) error
	GetDocumentByID(ctx context.Context, id string) (*domain.SourceDocument, error)
	GetDocumentByRemoteRef(ctx context.Context, remoteRef string) (*domain.SourceDocument, error)
	// DeleteDocument removes the document and, by cascade, its transcripts.
	DeleteDocument(ctx context.Context, id string) error

	// InsertTranscript appends a new transcript version as a single atomic
	// insert. Existing versions are never overwritten.
	InsertTranscript(ctx context.Context, transcript *domain.Transcript) error
	LatestTranscript(ctx context.Context, sourceDocumentID string) (*domain.Transcript, error)
}

// ArtifactRepository persists generated study artifacts.
type ArtifactRepository interface {
	CreateArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) error
	GetArtifactByID(ctx context.Context, id string) (*domain.GeneratedArtifact, error)
}

// Transcriber converts audio bytes into text via an external speech service.
type Transcriber interface {
	Transcribe(ctx context.Context, filename, mediaType string, data []byte) (string, error)
}

// TextExtractor turns raw bytes of a declared media type into normalized
// text. Unknown media types fail with domain.ErrUnsupportedFormat before any
// format-specific code runs.
type TextExtractor interface {
	Extract(ctx context.Context, mediaType string, data []byte) (domain.ExtractionOutcome, error)
	Supports(mediaType string) bool
}

// ArtifactSerializer turns a validated artifact into a downloadable file for
// one target format. Unmapped (kind, format) pairs fail with
// domain.ErrUnsupportedCombination before any serializer runs.
type ArtifactSerializer interface {
	Serialize(artifact *domain.GeneratedArtifact, format domain.TargetFormat) (*domain.SerializedFile, error)
	Supports(kind domain.ArtifactKind, format domain.TargetFormat) bool
}
