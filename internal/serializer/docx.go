package serializer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

const contentTypesPart = "[Content_Types].xml"

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1">
<w:name w:val="heading 1"/>
<w:rPr><w:b/><w:sz w:val="32"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading2">
<w:name w:val="heading 2"/>
<w:rPr><w:b/><w:sz w:val="26"/></w:rPr>
</w:style>
</w:styles>`

// serializeNotesDOCX renders note text into a word-processing package.
// '#'-prefixed lines map to the package heading styles; the word processor
// paginates automatically, so nothing is ever dropped for length.
func serializeNotesDOCX(artifact *domain.GeneratedArtifact) (*domain.SerializedFile, error) {
	var body strings.Builder
	if title := strings.TrimSpace(artifact.Title); title != "" {
		writeDocxParagraph(&body, title, "Heading1")
	}
	for _, line := range strings.Split(artifact.Content.Notes, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if heading, level := headingLine(line); heading != "" {
			style := "Heading1"
			if level > 1 {
				style = "Heading2"
			}
			writeDocxParagraph(&body, heading, style)
			continue
		}
		writeDocxParagraph(&body, line, "")
	}

	document := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>%s</w:body>
</w:document>`, body.String())

	buf, err := writePackage(map[string]string{
		contentTypesPart:               docxContentTypes,
		"_rels/.rels":                  docxRootRels,
		"word/_rels/document.xml.rels": docxDocumentRels,
		"word/document.xml":            document,
		"word/styles.xml":              docxStyles,
	})
	if err != nil {
		return nil, err
	}

	return &domain.SerializedFile{
		Buffer:   buf,
		MimeType: mimeDOCX,
		FileName: exportFileName(artifact, "docx"),
	}, nil
}

func writeDocxParagraph(b *strings.Builder, text, style string) {
	b.WriteString("<w:p>")
	if style != "" {
		fmt.Fprintf(b, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	fmt.Fprintf(b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, xmlEscape(text))
	b.WriteString("</w:p>")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// writePackage assembles an OOXML zip container from part name to part body.
// Entry order is fixed: [Content_Types].xml first, remaining parts sorted, so
// repeated serializations of the same artifact are byte-identical.
func writePackage(parts map[string]string) ([]byte, error) {
	names := make([]string, 0, len(parts))
	for name := range parts {
		if name != contentTypesPart {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := parts[contentTypesPart]; ok {
		names = append([]string{contentTypesPart}, names...)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create package part %s: %w", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			return nil, fmt.Errorf("write package part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}
