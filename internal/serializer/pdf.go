package serializer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// serializeNotesPDF renders note text into a paginated document. Lines
// prefixed with '#' become headings; pagination is automatic, content is
// never truncated to fit a page.
func serializeNotesPDF(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(artifact.Title, true)
	pdf.AddPage()

	if title := strings.TrimSpace(artifact.Title); title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 10, title, "", "L", false)
		pdf.Ln(4)
	}

	for _, line := range strings.Split(artifact.Content.Notes, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			pdf.Ln(4)
			continue
		}
		if heading, level := headingLine(line); heading != "" {
			size := 16.0
			if level > 1 {
				size = 13.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 8, heading, "", "L", false)
			pdf.Ln(2)
			continue
		}
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, line, "", "L", false)
	}

	return finishPDF(pdf, artifact)
}

// serializeSlidesPDF renders one page per slide entry, bullets in the given
// order. Titles and bullets are never reordered or deduplicated.
func serializeSlidesPDF(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(artifact.Title, true)

	for _, slide := range artifact.Content.Slides {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 24)
		pdf.MultiCell(0, 12, slide.Title, "", "L", false)
		pdf.Ln(6)

		pdf.SetFont("Helvetica", "", 16)
		for _, bullet := range slide.Bullets {
			pdf.MultiCell(0, 9, fmt.Sprintf("• %s", bullet), "", "L", false)
		}
	}

	return finishPDF(pdf, artifact)
}

// headingLine reports the heading text and level for '#'-prefixed lines,
// or "" for body text.
func headingLine(line string) (string, int) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 3 {
		return "", 0
	}
	text := strings.TrimSpace(line[level:])
	if text == "" {
		return "", 0
	}
	return text, level
}

func finishPDF(pdf *gofpdf.Fpdf, artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &domain.SerializedFile{
		Buffer:   buf.Bytes(),
		MimeType: mimePDF,
		FileName: exportFileName(artifact, "pdf"),
	}, nil
}
