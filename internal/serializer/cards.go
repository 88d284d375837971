package serializer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// serializeCardsPlain emits the tab-separated front/back pairs flashcard
// applications import directly.
func serializeCardsPlain(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	rows := make([][]string, 0, len(artifact.Content.Cards))
	for _, card := range artifact.Content.Cards {
		rows = append(rows, []string{card.Front, card.Back})
	}
	return writeCardPackage(artifact, rows)
}

// serializeCardsWithHints is the enhanced variant: each pair carries the
// per-card hint as a third field, which the target application maps to an
// extra note field.
func serializeCardsWithHints(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	rows := make([][]string, 0, len(artifact.Content.Cards))
	for _, card := range artifact.Content.Cards {
		rows = append(rows, []string{card.Front, card.Back, card.Hint})
	}
	return writeCardPackage(artifact, rows)
}

// writeCardPackage writes tab-separated rows with CSV-style quoting, which
// keeps embedded tabs and newlines importable.
func writeCardPackage(artifact *domain.GeneratedArtifact, rows [][]string) (*domain.SerializedFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write card row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush card package: %w", err)
	}

	return &domain.SerializedFile{
		Buffer:   buf.Bytes(),
		MimeType: mimeTSV,
		FileName: exportFileName(artifact, "txt"),
	}, nil
}
