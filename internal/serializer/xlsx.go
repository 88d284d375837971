package serializer

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// serializeFlashcardsXLSX writes one sheet row per card with the same fixed
// column order as the CSV variant.
func serializeFlashcardsXLSX(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	rows := [][]any{{"front", "back", "hint"}}
	for _, card := range artifact.Content.Cards {
		rows = append(rows, []any{card.Front, card.Back, card.Hint})
	}
	return writeWorkbook(artifact, "Flashcards", rows)
}

// serializeQuizXLSX writes one sheet row per question: question,
// correct_index, explanation, then one cell per option.
func serializeQuizXLSX(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	rows := make([][]any, 0, len(artifact.Content.Quiz)+1)
	rows = append(rows, []any{"question", "correct_index", "explanation", "options"})
	for _, q := range artifact.Content.Quiz {
		row := []any{q.Question, strconv.Itoa(q.CorrectIndex), q.Explanation}
		for _, option := range q.Options {
			row = append(row, option)
		}
		rows = append(rows, row)
	}
	return writeWorkbook(artifact, "Quiz", rows)
}

func writeWorkbook(artifact *domain.GeneratedArtifact, sheet string, rows [][]any) (*domain.SerializedFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell name for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	return &domain.SerializedFile{
		Buffer:   buf.Bytes(),
		MimeType: mimeXLSX,
		FileName: exportFileName(artifact, "xlsx"),
	}, nil
}
