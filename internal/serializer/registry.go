// Package serializer turns generated study artifacts into downloadable
// files. Dispatch is a closed table keyed by (artifact kind, target format);
// unmapped pairs are rejected before any serializer runs.
package serializer

import (
	"fmt"
	"strings"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
)

const (
	mimeCSV  = "text/csv"
	mimeTSV  = "text/tab-separated-values"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type pairKey struct {
	kind   domain.ArtifactKind
	format domain.TargetFormat
}

type serializeFn func(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error)

// Registry holds the fixed (kind, format) table. All serializers are pure
// functions over the artifact content; none perform I/O.
type Registry struct {
	table map[pairKey]serializeFn
}

var _ ports.ArtifactSerializer = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		table: map[pairKey]serializeFn{
			{domain.KindNotes, domain.FormatDOCX}: serializeNotesDOCX,
			{domain.KindNotes, domain.FormatPDF}:  serializeNotesPDF,

			{domain.KindFlashcards, domain.FormatCSV}:        serializeFlashcardsCSV,
			{domain.KindFlashcards, domain.FormatCards}:      serializeCardsPlain,
			{domain.KindFlashcards, domain.FormatCardsHints}: serializeCardsWithHints,
			{domain.KindFlashcards, domain.FormatXLSX}:       serializeFlashcardsXLSX,

			{domain.KindQuiz, domain.FormatCSV}:  serializeQuizCSV,
			{domain.KindQuiz, domain.FormatXLSX}: serializeQuizXLSX,

			{domain.KindSlides, domain.FormatPPTX}: serializeSlidesPPTX,
			{domain.KindSlides, domain.FormatPDF}:  serializeSlidesPDF,
		},
	}
}

func (r *Registry) Serialize(artifact *domain.GeneratedArtifact, format domain.TargetFormat) (*domain.SerializedFile, error) {
	fn, ok := r.table[pairKey{artifact.Kind, format}]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedCombination, "dispatch serializer",
			fmt.Errorf("kind %q as %q", artifact.Kind, format))
	}
	file, err := fn(artifact)
	if err != nil {
		return nil, err
	}
	file.Kind = artifact.Kind
	return file, nil
}

func (r *Registry) Supports(kind domain.ArtifactKind, format domain.TargetFormat) bool {
	_, ok := r.table[pairKey{kind, format}]
	return ok
}

// exportFileName builds "<slug>.<ext>" from the artifact title, falling back
// to the artifact kind for blank titles.
func exportFileName(artifact *domain.GeneratedArtifact, ext string) string {
	base := strings.TrimSpace(artifact.Title)
	if base == "" {
		base = string(artifact.Kind)
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, base)
	if base == "" {
		base = string(artifact.Kind)
	}
	return base + "." + ext
}
