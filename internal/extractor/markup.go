package extractor

import (
	"strconv"
	"strings"
)

// flattenXML reduces an XML fragment to its visible text: every tag becomes
// a single space, character entities are decoded, runs of whitespace
// collapse to one space and the result is trimmed.
func flattenXML(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	inTag := false
	for _, r := range raw {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return collapseSpaces(decodeEntities(b.String()))
}

var namedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

// decodeEntities resolves the named entities OOXML emits plus numeric
// references (&#nn; and &#xhh;). Unknown entities pass through verbatim.
func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 || end > 10 {
			b.WriteByte(s[i])
			i++
			continue
		}
		name := s[i+1 : i+end]
		if decoded, ok := decodeEntityName(name); ok {
			b.WriteString(decoded)
			i += end + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func decodeEntityName(name string) (string, bool) {
	if v, ok := namedEntities[name]; ok {
		return v, true
	}
	if len(name) > 1 && name[0] == '#' {
		numeric := name[1:]
		base := 10
		if numeric[0] == 'x' || numeric[0] == 'X' {
			numeric = numeric[1:]
			base = 16
		}
		code, err := strconv.ParseInt(numeric, base, 32)
		if err != nil || code <= 0 {
			return "", false
		}
		return string(rune(code)), true
	}
	return "", false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
