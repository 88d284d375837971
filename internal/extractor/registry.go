// Package extractor turns raw document bytes into normalized plain text.
// Dispatch is a closed table keyed by declared media type; unknown types are
// rejected before any format-specific code runs.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
	"github.com/dsemenov/studycraft/internal/normalize"
)

// Supported media types.
const (
	MediaTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePDF  = "application/pdf"
	MediaTypeText = "text/plain"
)

var audioMediaTypes = []string{
	"audio/webm",
	"audio/mpeg",
	"audio/mp4",
	"audio/x-m4a",
	"audio/wav",
}

type extractFn func(ctx context.Context, mediaType string, data []byte) (domain.ExtractionOutcome, error)

// Registry maps declared media types to extractors and applies the shared
// normalizer to every successful outcome.
type Registry struct {
	table map[string]extractFn
}

var _ ports.TextExtractor = (*Registry)(nil)

// NewRegistry builds the fixed dispatch table. The transcriber collaborator
// backs the audio media types; all other extractors are pure functions over
// the supplied bytes.
func NewRegistry(transcriber ports.Transcriber) *Registry {
	table := map[string]extractFn{
		MediaTypePPTX: func(_ context.Context, _ string, data []byte) (domain.ExtractionOutcome, error) {
			return extractPPTX(data)
		},
		MediaTypeDOCX: func(_ context.Context, _ string, data []byte) (domain.ExtractionOutcome, error) {
			return extractDOCX(data)
		},
		MediaTypePDF: func(_ context.Context, _ string, data []byte) (domain.ExtractionOutcome, error) {
			return extractPDF(data)
		},
		MediaTypeText: func(_ context.Context, _ string, data []byte) (domain.ExtractionOutcome, error) {
			return extractPlainText(data)
		},
	}

	audio := &audioExtractor{transcriber: transcriber}
	for _, mediaType := range audioMediaTypes {
		table[mediaType] = audio.extract
	}

	return &Registry{table: table}
}

func (r *Registry) Extract(ctx context.Context, mediaType string, data []byte) (domain.ExtractionOutcome, error) {
	fn, ok := r.table[canonicalMediaType(mediaType)]
	if !ok {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrUnsupportedFormat, "dispatch extractor",
			fmt.Errorf("media type %q", mediaType))
	}

	outcome, err := fn(ctx, mediaType, data)
	if err != nil {
		return domain.ExtractionOutcome{}, err
	}

	outcome.Text = normalize.Text(outcome.Text)
	return outcome, nil
}

func (r *Registry) Supports(mediaType string) bool {
	_, ok := r.table[canonicalMediaType(mediaType)]
	return ok
}

// canonicalMediaType drops parameters such as "; charset=utf-8" and
// lowercases the type so the table lookup sees one spelling.
func canonicalMediaType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
