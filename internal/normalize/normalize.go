// Package normalize provides the shared text cleanup applied after every
// extractor, so downstream consumers see a uniform text shape regardless of
// the source format.
package normalize

import (
	"strings"
	"unicode"
)

// Text collapses whitespace and removes control characters while preserving
// line structure and reading order. It is idempotent:
// Text(Text(x)) == Text(x).
func Text(raw string) string {
	if raw == "" {
		return ""
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blankPending := false

	for _, line := range lines {
		line = collapseLine(line)
		if line == "" {
			if len(out) > 0 {
				blankPending = true
			}
			continue
		}
		if blankPending {
			out = append(out, "")
			blankPending = false
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// collapseLine squeezes runs of spacing characters to a single space and
// strips control characters, then trims the result.
func collapseLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	inSpace := false

	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case unicode.IsControl(r):
			// Dropped outright: stray control bytes carry no text.
		default:
			if inSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
