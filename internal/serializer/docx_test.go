package serializer

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/dsemenov/studycraft/internal/core/domain"
)

func readPackagePart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open part %s: %v", name, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read part %s: %v", name, err)
		}
		return string(raw)
	}
	t.Fatalf("package has no part %s", name)
	return ""
}

func TestNotesDOCXStructure(t *testing.T) {
	artifact := &domain.GeneratedArtifact{
		Kind:  domain.KindNotes,
		Title: "Mitosis",
		Content: domain.ArtifactContent{
			Notes: "# Phases\nProphase & metaphase follow.\n## Details\nSpindle <fibers> attach.",
		},
	}

	file, err := serializeNotesDOCX(artifact)
	if err != nil {
		t.Fatalf("serializeNotesDOCX() error = %v", err)
	}
	if file.MimeType != mimeDOCX {
		t.Fatalf("mime = %q", file.MimeType)
	}

	document := readPackagePart(t, file.Buffer, "word/document.xml")

	if !strings.Contains(document, `<w:pStyle w:val="Heading1"/>`) {
		t.Fatalf("missing Heading1 style:\n%s", document)
	}
	if !strings.Contains(document, `<w:pStyle w:val="Heading2"/>`) {
		t.Fatalf("missing Heading2 style:\n%s", document)
	}
	if !strings.Contains(document, "Prophase &amp; metaphase follow.") {
		t.Fatalf("ampersand not escaped:\n%s", document)
	}
	if !strings.Contains(document, "Spindle &lt;fibers&gt; attach.") {
		t.Fatalf("angle brackets not escaped:\n%s", document)
	}

	// Heading text must not leak the '#' marker.
	if strings.Contains(document, "#") {
		t.Fatalf("marker leaked into document:\n%s", document)
	}

	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml"} {
		readPackagePart(t, file.Buffer, part)
	}
}

func TestNotesDOCXKeepsAllContent(t *testing.T) {
	var lines []string
	for i := 0; i < 400; i++ {
		lines = append(lines, "Line of study notes that must survive pagination.")
	}
	artifact := &domain.GeneratedArtifact{
		Kind:    domain.KindNotes,
		Content: domain.ArtifactContent{Notes: strings.Join(lines, "\n")},
	}

	file, err := serializeNotesDOCX(artifact)
	if err != nil {
		t.Fatalf("serializeNotesDOCX() error = %v", err)
	}

	document := readPackagePart(t, file.Buffer, "word/document.xml")
	if got := strings.Count(document, "must survive pagination"); got != 400 {
		t.Fatalf("expected 400 paragraphs, found %d", got)
	}
}

func TestPackageEntryOrderIsDeterministic(t *testing.T) {
	artifact := &domain.GeneratedArtifact{
		Kind:    domain.KindNotes,
		Title:   "Genetics",
		Content: domain.ArtifactContent{Notes: "# Alleles\nDominant and recessive."},
	}

	first, err := serializeNotesDOCX(artifact)
	if err != nil {
		t.Fatalf("serializeNotesDOCX() error = %v", err)
	}
	second, err := serializeNotesDOCX(artifact)
	if err != nil {
		t.Fatalf("serializeNotesDOCX() error = %v", err)
	}
	if !bytes.Equal(first.Buffer, second.Buffer) {
		t.Fatalf("same artifact produced different bytes across runs")
	}

	zr, err := zip.NewReader(bytes.NewReader(first.Buffer), int64(len(first.Buffer)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	if len(zr.File) == 0 {
		t.Fatalf("package has no entries")
	}
	if zr.File[0].Name != "[Content_Types].xml" {
		t.Fatalf("first entry = %q, want [Content_Types].xml", zr.File[0].Name)
	}
	for i := 2; i < len(zr.File); i++ {
		if zr.File[i-1].Name > zr.File[i].Name {
			t.Fatalf("entries after the first are not sorted: %q > %q", zr.File[i-1].Name, zr.File[i].Name)
		}
	}
}
