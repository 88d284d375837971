package extractor

import (
	"context"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
)

type audioExtractor struct {
	transcriber ports.Transcriber
}

// extract hands the audio bytes to the external speech service. The service
// owns its own retry policy; failures surface as-is.
func (e *audioExtractor) extract(ctx context.Context, mediaType string, data []byte) (domain.ExtractionOutcome, error) {
	text, err := e.transcriber.Transcribe(ctx, "recording", mediaType, data)
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrExtractionFailed, "transcribe audio", err)
	}

	outcome := domain.ExtractionOutcome{Text: text}
	if text == "" {
		outcome.Warnings = append(outcome.Warnings, "transcription produced no text")
	}
	return outcome, nil
}
