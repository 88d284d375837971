package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
)

// ExportArtifactUseCase stores generated study artifacts and serializes
// them into downloadable files.
type ExportArtifactUseCase struct {
	artifacts  ports.ArtifactRepository
	serializer ports.ArtifactSerializer
}

var _ ports.ArtifactExporter = (*ExportArtifactUseCase)(nil)

func NewExportArtifactUseCase(
	artifacts ports.ArtifactRepository,
	serializer ports.ArtifactSerializer,
) *ExportArtifactUseCase {
	return &ExportArtifactUseCase{
		artifacts:  artifacts,
		serializer: serializer,
	}
}

// CreateArtifact persists structured study content after checking that the
// content shape matches the declared kind.
func (uc *ExportArtifactUseCase) CreateArtifact(
	ctx context.Context,
	kind domain.ArtifactKind,
	title, ownerID string,
	content domain.ArtifactContent,
) (*domain.GeneratedArtifact, error) {
	artifact := &domain.GeneratedArtifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	if err := uc.artifacts.CreateArtifact(ctx, artifact); err != nil {
		return nil, fmt.Errorf("create artifact record: %w", err)
	}
	return artifact, nil
}

// Export loads the artifact and hands it to the serialization dispatcher.
// The (kind, format) pair is checked before any serializer executes.
func (uc *ExportArtifactUseCase) Export(
	ctx context.Context,
	artifactID string,
	format domain.TargetFormat,
) (*domain.SerializedFile, error) {
	artifact, err := uc.artifacts.GetArtifactByID(ctx, artifactID)
	if err != nil {
		return nil, err
	}

	if !uc.serializer.Supports(artifact.Kind, format) {
		return nil, domain.WrapError(domain.ErrUnsupportedCombination, "export artifact",
			fmt.Errorf("kind %q as %q", artifact.Kind, format))
	}

	// Stored content is re-validated so a serializer never sees a shape
	// that does not match the kind.
	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	file, err := uc.serializer.Serialize(artifact, format)
	if err != nil {
		return nil, fmt.Errorf("serialize artifact: %w", err)
	}
	return file, nil
}
