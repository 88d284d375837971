package extractor

import (
	"fmt"
	"unicode/utf8"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// extractPlainText accepts UTF-8 text as-is; binary payloads declared as
// text/plain are rejected rather than passed through mangled.
func extractPlainText(data []byte) (domain.ExtractionOutcome, error) {
	if !utf8.Valid(data) {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "decode plain text",
			fmt.Errorf("payload is not valid utf-8"))
	}

	outcome := domain.ExtractionOutcome{Text: string(data)}
	if len(data) == 0 {
		outcome.Warnings = append(outcome.Warnings, "document is empty")
	}
	return outcome, nil
}
