package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

type artifactRepoFake struct {
	artifacts map[string]*domain.GeneratedArtifact
	createErr error
}

func newArtifactRepoFake() *artifactRepoFake {
	return &artifactRepoFake{artifacts: map[string]*domain.GeneratedArtifact{}}
}

func (r *artifactRepoFake) CreateArtifact(_ context.Context, a *domain.GeneratedArtifact) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.artifacts[a.ID] = a
	return nil
}

func (r *artifactRepoFake) GetArtifactByID(_ context.Context, id string) (*domain.GeneratedArtifact, error) {
	a, ok := r.artifacts[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get artifact", fmt.Errorf("id %s", id))
	}
	return a, nil
}

type serializerFake struct {
	supported map[string]bool
	calls     int
}

func pair(kind domain.ArtifactKind, format domain.TargetFormat) string {
	return string(kind) + "/" + string(format)
}

func (s *serializerFake) Serialize(a *domain.GeneratedArtifact, format domain.TargetFormat) (*domain.SerializedFile, error) {
	s.calls++
	return &domain.SerializedFile{
		Buffer:   []byte("file body"),
		MimeType: "application/octet-stream",
		FileName: a.Title + "." + string(format),
	}, nil
}

func (s *serializerFake) Supports(kind domain.ArtifactKind, format domain.TargetFormat) bool {
	return s.supported[pair(kind, format)]
}

func newExportFixture() (*ExportArtifactUseCase, *artifactRepoFake, *serializerFake) {
	repo := newArtifactRepoFake()
	ser := &serializerFake{supported: map[string]bool{
		pair(domain.KindNotes, domain.FormatPDF):        true,
		pair(domain.KindFlashcards, domain.FormatCards): true,
	}}
	return NewExportArtifactUseCase(repo, ser), repo, ser
}

func TestCreateArtifactPersistsValidContent(t *testing.T) {
	uc, repo, _ := newExportFixture()

	artifact, err := uc.CreateArtifact(context.Background(), domain.KindNotes, "Biology", "owner-1",
		domain.ArtifactContent{Notes: "mitochondria"})
	if err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}
	if artifact.ID == "" {
		t.Fatalf("artifact id not assigned")
	}
	if _, ok := repo.artifacts[artifact.ID]; !ok {
		t.Fatalf("artifact not persisted")
	}
}

func TestCreateArtifactRejectsMismatchedShape(t *testing.T) {
	uc, repo, _ := newExportFixture()

	// Notes kind with flashcard content must fail validation, not persist.
	_, err := uc.CreateArtifact(context.Background(), domain.KindNotes, "Biology", "owner-1",
		domain.ArtifactContent{Cards: []domain.Flashcard{{Front: "q", Back: "a"}}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
	if len(repo.artifacts) != 0 {
		t.Fatalf("invalid artifact persisted")
	}
}

func TestExportSerializesSupportedPair(t *testing.T) {
	uc, _, ser := newExportFixture()

	artifact, err := uc.CreateArtifact(context.Background(), domain.KindNotes, "Biology", "owner-1",
		domain.ArtifactContent{Notes: "mitochondria"})
	if err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}

	file, err := uc.Export(context.Background(), artifact.ID, domain.FormatPDF)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if file.FileName != "Biology.pdf" {
		t.Fatalf("file name = %q", file.FileName)
	}
	if ser.calls != 1 {
		t.Fatalf("serializer calls = %d, want 1", ser.calls)
	}
}

func TestExportRejectsUnmappedPairBeforeSerializing(t *testing.T) {
	uc, _, ser := newExportFixture()

	artifact, err := uc.CreateArtifact(context.Background(), domain.KindNotes, "Biology", "owner-1",
		domain.ArtifactContent{Notes: "mitochondria"})
	if err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}

	_, err = uc.Export(context.Background(), artifact.ID, domain.FormatPPTX)
	if !domain.IsKind(err, domain.ErrUnsupportedCombination) {
		t.Fatalf("error = %v, want unsupported combination", err)
	}
	if ser.calls != 0 {
		t.Fatalf("serializer ran for an unmapped pair")
	}
}

func TestExportUnknownArtifact(t *testing.T) {
	uc, _, _ := newExportFixture()

	_, err := uc.Export(context.Background(), "missing", domain.FormatPDF)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestExportRevalidatesStoredContent(t *testing.T) {
	uc, repo, ser := newExportFixture()

	// Simulate a row whose stored payload no longer matches its kind.
	repo.artifacts["a1"] = &domain.GeneratedArtifact{
		ID:   "a1",
		Kind: domain.KindFlashcards,
	}

	_, err := uc.Export(context.Background(), "a1", domain.FormatCards)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
	if ser.calls != 0 {
		t.Fatalf("serializer saw malformed content")
	}
}
