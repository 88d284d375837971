package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

const wordDocumentPart = "word/document.xml"

// extractDOCX pulls the main document part out of a word-processing archive
// and flattens it paragraph by paragraph, preserving reading order.
func extractDOCX(data []byte) (domain.ExtractionOutcome, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrCorruptArchive, "open document archive", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == wordDocumentPart {
			part = f
			break
		}
	}
	if part == nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "locate document part",
			fmt.Errorf("archive has no %s entry", wordDocumentPart))
	}

	rc, err := part.Open()
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "open document part", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "read document part", err)
	}

	paragraphs := splitParagraphs(string(raw))
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if text := flattenXML(p); text != "" {
			lines = append(lines, text)
		}
	}

	outcome := domain.ExtractionOutcome{Text: strings.Join(lines, "\n")}
	if outcome.Text == "" {
		outcome.Warnings = append(outcome.Warnings, "document contains no visible text")
	}
	return outcome, nil
}

// splitParagraphs cuts the document XML on paragraph close tags so that each
// paragraph becomes its own output line. Explicit line breaks inside a
// paragraph collapse into the paragraph text.
func splitParagraphs(xmlBody string) []string {
	xmlBody = strings.ReplaceAll(xmlBody, "<w:tab/>", " ")
	xmlBody = strings.ReplaceAll(xmlBody, "<w:br/>", " ")
	return strings.Split(xmlBody, "</w:p>")
}
