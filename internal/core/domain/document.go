package domain

import "time"

// SourceDocument describes one uploaded file. It is created once at upload
// time and never mutated; deleting it cascades its transcripts.
type SourceDocument struct {
	ID                string    `json:"id"`
	RemoteRef         string    `json:"remote_ref"`
	Filename          string    `json:"filename"`
	DeclaredMediaType string    `json:"declared_media_type"`
	SizeBytes         int64     `json:"size_bytes"`
	OwnerID           string    `json:"owner_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// Transcript is the persisted plain-text result of one extraction run.
// Re-ingesting a document appends a new transcript version; the most recent
// by CreatedAt is authoritative.
type Transcript struct {
	ID               string    `json:"id"`
	SourceDocumentID string    `json:"source_document_id"`
	Content          string    `json:"content"`
	Warnings         []string  `json:"warnings,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ExtractionOutcome is the transient result of running an extractor over a
// byte buffer. Per-item issues accumulate as warnings; only container-level
// corruption surfaces as an error.
type ExtractionOutcome struct {
	Text     string
	Warnings []string
}
