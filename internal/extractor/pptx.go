package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

// slideDelimiter formats the human-readable boundary between slides so that
// downstream consumers can reconstruct slide positions from the text alone.
func slideDelimiter(index int) string {
	return fmt.Sprintf("=== Slide %d ===", index)
}

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide([0-9]+)\.xml$`)

type slidePart struct {
	index int
	file  *zip.File
}

// extractPPTX walks the slide parts of a presentation archive in numeric
// slide order and flattens each part to visible text. Slides that parse but
// contain no text produce a warning, not a failure.
func extractPPTX(data []byte) (domain.ExtractionOutcome, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrCorruptArchive, "open slide archive", err)
	}

	parts := make([]slidePart, 0, len(zr.File))
	for _, f := range zr.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{index: index, file: f})
	}

	// A deck with zero slide parts is legitimately text-free: soft result.
	if len(parts) == 0 {
		return domain.ExtractionOutcome{
			Warnings: []string{"presentation contains no slide parts"},
		}, nil
	}

	// Numeric order, not lexical: a string sort puts slide10 before slide2.
	sort.Slice(parts, func(i, j int) bool { return parts[i].index < parts[j].index })

	var sections []string
	var warnings []string
	for _, part := range parts {
		text, err := readSlideText(part.file)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("slide %d: %v", part.index, err))
			continue
		}
		if text == "" {
			warnings = append(warnings, fmt.Sprintf("slide %d has no visible text", part.index))
			continue
		}
		sections = append(sections, slideDelimiter(part.index)+"\n"+text)
	}

	return domain.ExtractionOutcome{
		Text:     strings.Join(sections, "\n\n"),
		Warnings: warnings,
	}, nil
}

func readSlideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open slide part: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read slide part: %w", err)
	}
	return flattenXML(string(raw)), nil
}
