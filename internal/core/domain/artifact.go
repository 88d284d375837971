package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ArtifactKind string

const (
	KindNotes      ArtifactKind = "notes"
	KindFlashcards ArtifactKind = "flashcards"
	KindQuiz       ArtifactKind = "quiz"
	KindSlides     ArtifactKind = "slides"
)

// TargetFormat names one downloadable file format. The supported
// (kind, format) pairs form a closed table owned by the serializer registry.
type TargetFormat string

const (
	FormatCSV        TargetFormat = "csv"
	FormatCards      TargetFormat = "cards"
	FormatCardsHints TargetFormat = "cards-hints"
	FormatDOCX       TargetFormat = "docx"
	FormatPDF        TargetFormat = "pdf"
	FormatPPTX       TargetFormat = "pptx"
	FormatXLSX       TargetFormat = "xlsx"
)

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Hint  string `json:"hint,omitempty"`
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
}

type SlideOutline struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// ArtifactContent holds the kind-specific payload of a generated artifact.
// Exactly one field is populated, matching the artifact's kind.
type ArtifactContent struct {
	Notes  string         `json:"notes,omitempty"`
	Cards  []Flashcard    `json:"cards,omitempty"`
	Quiz   []QuizQuestion `json:"quiz,omitempty"`
	Slides []SlideOutline `json:"slides,omitempty"`
}

// GeneratedArtifact is AI-derived structured study content. Read-only input
// to serialization.
type GeneratedArtifact struct {
	ID        string          `json:"id"`
	Kind      ArtifactKind    `json:"kind"`
	Title     string          `json:"title"`
	Content   ArtifactContent `json:"content"`
	OwnerID   string          `json:"owner_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// SerializedFile is the transient output of one serializer run. Never
// persisted; returned directly to the caller. Kind echoes the source
// artifact's kind for accounting at the transport edge.
type SerializedFile struct {
	Buffer   []byte
	MimeType string
	FileName string
	Kind     ArtifactKind
}

// Validate checks that the content shape matches the artifact kind before
// it is handed to the serialization dispatcher. The dispatcher does not
// attempt to repair malformed content.
func (a *GeneratedArtifact) Validate() error {
	switch a.Kind {
	case KindNotes:
		if strings.TrimSpace(a.Content.Notes) == "" {
			return WrapError(ErrInvalidInput, "validate artifact", fmt.Errorf("notes artifact has empty text"))
		}
	case KindFlashcards:
		if len(a.Content.Cards) == 0 {
			return WrapError(ErrInvalidInput, "validate artifact", fmt.Errorf("flashcards artifact has no cards"))
		}
	case KindQuiz:
		if len(a.Content.Quiz) == 0 {
			return WrapError(ErrInvalidInput, "validate artifact", fmt.Errorf("quiz artifact has no questions"))
		}
		for i, q := range a.Content.Quiz {
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return WrapError(ErrInvalidInput, "validate artifact", fmt.Errorf("question %d: correct_index %d out of range", i, q.CorrectIndex))
			}
		}
	case KindSlides:
		if len(a.Content.Slides) == 0 {
			return WrapError(ErrInvalidInput, "validate artifact", fmt.Errorf("slides artifact has no slides"))
		}
	default:
		return WrapError(ErrInvalidInput, "validate artifact", fmt.Errorf("unknown kind %q", a.Kind))
	}
	return nil
}

// DecodeContent parses a stored JSON payload into the kind-specific shape.
func DecodeContent(raw []byte) (ArtifactContent, error) {
	var content ArtifactContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return ArtifactContent{}, fmt.Errorf("decode artifact content: %w", err)
	}
	return content, nil
}
