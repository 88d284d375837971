package extractor

import (
	"strings"
	"testing"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

func documentXML(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><w:document><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p><w:r><w:t>`)
		b.WriteString(p)
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func TestDOCXExtractsParagraphsInOrder(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"word/document.xml": documentXML("Intro paragraph", "Second   paragraph", "Closing"),
		"word/styles.xml":   `<w:styles/>`,
	})

	outcome, err := extractDOCX(archive)
	if err != nil {
		t.Fatalf("extractDOCX() error = %v", err)
	}

	want := "Intro paragraph\nSecond paragraph\nClosing"
	if outcome.Text != want {
		t.Fatalf("got %q, want %q", outcome.Text, want)
	}
	if len(outcome.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", outcome.Warnings)
	}
}

func TestDOCXMissingDocumentPart(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"word/styles.xml": `<w:styles/>`,
	})

	_, err := extractDOCX(archive)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestDOCXCorruptArchive(t *testing.T) {
	_, err := extractDOCX([]byte("garbage"))
	if !domain.IsKind(err, domain.ErrCorruptArchive) {
		t.Fatalf("expected ErrCorruptArchive, got %v", err)
	}
}

func TestDOCXEmptyDocumentWarns(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"word/document.xml": documentXML(),
	})

	outcome, err := extractDOCX(archive)
	if err != nil {
		t.Fatalf("extractDOCX() error = %v", err)
	}
	if outcome.Text != "" || len(outcome.Warnings) != 1 {
		t.Fatalf("expected soft empty result, got text=%q warnings=%v", outcome.Text, outcome.Warnings)
	}
}
