package extractor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// extractPDF reads the plain-text layer of a page-description document.
// Encrypted or malformed input fails with a typed error carrying the cause;
// it never silently returns truncated text.
func extractPDF(data []byte) (outcome domain.ExtractionOutcome, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.ExtractionOutcome{}
			err = domain.WrapError(domain.ErrExtractionFailed, "parse pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "open pdf", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "extract pdf text", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "read pdf text", err)
	}

	outcome = domain.ExtractionOutcome{Text: buf.String()}
	if buf.Len() == 0 {
		outcome.Warnings = append(outcome.Warnings, "pdf contains no extractable text")
	}
	return outcome, nil
}
