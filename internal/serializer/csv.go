package serializer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// serializeFlashcardsCSV writes one row per card. Column order is fixed:
// front, back, hint.
func serializeFlashcardsCSV(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	rows := make([][]string, 0, len(artifact.Content.Cards)+1)
	rows = append(rows, []string{"front", "back", "hint"})
	for _, card := range artifact.Content.Cards {
		rows = append(rows, []string{card.Front, card.Back, card.Hint})
	}
	return writeCSV(artifact, rows)
}

// serializeQuizCSV writes one row per question. Column order is fixed:
// question, correct_index, explanation, then one column per option in the
// given order.
func serializeQuizCSV(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	rows := make([][]string, 0, len(artifact.Content.Quiz))
	for _, q := range artifact.Content.Quiz {
		row := []string{q.Question, strconv.Itoa(q.CorrectIndex), q.Explanation}
		row = append(row, q.Options...)
		rows = append(rows, row)
	}
	return writeCSV(artifact, rows)
}

func writeCSV(artifact *domain.GeneratedArtifact, rows [][]string) (*domain.SerializedFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &domain.SerializedFile{
		Buffer:   buf.Bytes(),
		MimeType: mimeCSV,
		FileName: exportFileName(artifact, "csv"),
	}, nil
}
