package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
)

type repoFake struct {
	docsByID    map[string]*domain.SourceDocument
	docsByRef   map[string]*domain.SourceDocument
	transcripts []*domain.Transcript
}

func newRepoFake() *repoFake {
	return &repoFake{
		docsByID:  map[string]*domain.SourceDocument{},
		docsByRef: map[string]*domain.SourceDocument{},
	}
}

func (r *repoFake) CreateDocument(_ context.Context, doc *domain.SourceDocument) error {
	r.docsByID[doc.ID] = doc
	r.docsByRef[doc.RemoteRef] = doc
	return nil
}

func (r *repoFake) GetDocumentByID(_ context.Context, id string) (*domain.SourceDocument, error) {
	doc, ok := r.docsByID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
	}
	return doc, nil
}

func (r *repoFake) GetDocumentByRemoteRef(_ context.Context, ref string) (*domain.SourceDocument, error) {
	doc, ok := r.docsByRef[ref]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("ref %s", ref))
	}
	return doc, nil
}

func (r *repoFake) DeleteDocument(_ context.Context, id string) error {
	doc, ok := r.docsByID[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	delete(r.docsByID, id)
	delete(r.docsByRef, doc.RemoteRef)
	kept := r.transcripts[:0]
	for _, tr := range r.transcripts {
		if tr.SourceDocumentID != id {
			kept = append(kept, tr)
		}
	}
	r.transcripts = kept
	return nil
}

func (r *repoFake) InsertTranscript(_ context.Context, tr *domain.Transcript) error {
	r.transcripts = append(r.transcripts, tr)
	return nil
}

func (r *repoFake) LatestTranscript(_ context.Context, docID string) (*domain.Transcript, error) {
	for i := len(r.transcripts) - 1; i >= 0; i-- {
		if r.transcripts[i].SourceDocumentID == docID {
			return r.transcripts[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "latest transcript", fmt.Errorf("document %s", docID))
}

type storageFake struct {
	objects  map[string][]byte
	openErr  error
	saveErr  error
	openLog  []string
	saveSeen []string
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (s *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = b
	s.saveSeen = append(s.saveSeen, key)
	return nil
}

func (s *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.openLog = append(s.openLog, key)
	if s.openErr != nil {
		return nil, s.openErr
	}
	b, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type extractorFake struct {
	supported map[string]bool
	outcome   domain.ExtractionOutcome
	err       error
	calls     int
}

func (e *extractorFake) Extract(_ context.Context, mediaType string, _ []byte) (domain.ExtractionOutcome, error) {
	e.calls++
	if !e.supported[mediaType] {
		return domain.ExtractionOutcome{}, domain.WrapError(domain.ErrUnsupportedFormat, "extract", fmt.Errorf("media type %q", mediaType))
	}
	if e.err != nil {
		return domain.ExtractionOutcome{}, e.err
	}
	return e.outcome, nil
}

func (e *extractorFake) Supports(mediaType string) bool { return e.supported[mediaType] }

func newIngestFixture() (*IngestDocumentUseCase, *repoFake, *storageFake, *extractorFake) {
	repo := newRepoFake()
	store := newStorageFake()
	ex := &extractorFake{
		supported: map[string]bool{"text/plain": true},
		outcome:   domain.ExtractionOutcome{Text: "extracted text"},
	}
	return NewIngestDocumentUseCase(repo, store, ex), repo, store, ex
}

func TestUploadStoresBytesAndRecordsDocument(t *testing.T) {
	uc, repo, store, _ := newIngestFixture()

	doc, err := uc.Upload(context.Background(), "week 1 notes.txt", "text/plain", "owner-1",
		strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.SizeBytes != 5 {
		t.Fatalf("size = %d, want 5", doc.SizeBytes)
	}
	if !strings.HasSuffix(doc.RemoteRef, "_week_1_notes.txt") {
		t.Fatalf("remote ref %q not sanitized", doc.RemoteRef)
	}
	if _, ok := store.objects[doc.RemoteRef]; !ok {
		t.Fatalf("bytes not saved under %q", doc.RemoteRef)
	}
	if _, ok := repo.docsByID[doc.ID]; !ok {
		t.Fatalf("document record not created")
	}
}

func TestUploadRejectsUnknownMediaTypeBeforeStorage(t *testing.T) {
	uc, _, store, _ := newIngestFixture()

	_, err := uc.Upload(context.Background(), "deck.key", "application/x-iwork-keynote", "owner-1",
		strings.NewReader("data"))
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want unsupported format", err)
	}
	if len(store.saveSeen) != 0 {
		t.Fatalf("storage touched for rejected media type")
	}
}

func TestIngestCreatesDocumentAndTranscript(t *testing.T) {
	uc, repo, store, _ := newIngestFixture()
	store.objects["lectures/intro.txt"] = []byte("raw")

	tr, err := uc.Ingest(context.Background(), ports.IngestRequest{
		RemoteRef:         "lectures/intro.txt",
		DeclaredMediaType: "text/plain",
		OwnerID:           "owner-1",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if tr.Content != "extracted text" {
		t.Fatalf("content = %q", tr.Content)
	}

	doc, err := repo.GetDocumentByRemoteRef(context.Background(), "lectures/intro.txt")
	if err != nil {
		t.Fatalf("document row missing: %v", err)
	}
	if tr.SourceDocumentID != doc.ID {
		t.Fatalf("transcript links to %q, document is %q", tr.SourceDocumentID, doc.ID)
	}
	if doc.SizeBytes != 3 {
		t.Fatalf("size = %d, want 3", doc.SizeBytes)
	}
}

func TestIngestSameRefReusesDocument(t *testing.T) {
	uc, repo, store, _ := newIngestFixture()
	store.objects["a.txt"] = []byte("raw")
	req := ports.IngestRequest{RemoteRef: "a.txt", DeclaredMediaType: "text/plain"}

	first, err := uc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	second, err := uc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}

	if len(repo.docsByID) != 1 {
		t.Fatalf("expected one document row, got %d", len(repo.docsByID))
	}
	if first.ID == second.ID {
		t.Fatalf("re-ingest must append a new transcript version")
	}
	if first.SourceDocumentID != second.SourceDocumentID {
		t.Fatalf("transcripts attached to different documents")
	}
}

func TestIngestFetchFailureIsRetryable(t *testing.T) {
	uc, repo, store, ex := newIngestFixture()
	store.openErr = errors.New("connection reset")

	_, err := uc.Ingest(context.Background(), ports.IngestRequest{
		RemoteRef:         "b.txt",
		DeclaredMediaType: "text/plain",
	})
	if !domain.IsKind(err, domain.ErrFetchFailed) {
		t.Fatalf("error = %v, want fetch failed", err)
	}
	if ex.calls != 0 {
		t.Fatalf("extractor ran despite failed fetch")
	}
	if len(repo.docsByID) != 0 {
		t.Fatalf("document created despite failed fetch")
	}
}

func TestIngestExtractionFailureKeepsDocument(t *testing.T) {
	uc, repo, store, ex := newIngestFixture()
	store.objects["c.txt"] = []byte("raw")
	ex.err = domain.WrapError(domain.ErrExtractionFailed, "extract", errors.New("boom"))

	_, err := uc.Ingest(context.Background(), ports.IngestRequest{
		RemoteRef:         "c.txt",
		DeclaredMediaType: "text/plain",
	})
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("error = %v, want extraction failed", err)
	}
	if len(repo.docsByID) != 1 {
		t.Fatalf("document row must survive a failed extraction")
	}
	if len(repo.transcripts) != 0 {
		t.Fatalf("no transcript may be written on failure")
	}
}

func TestIngestRejectsEmptyRef(t *testing.T) {
	uc, _, _, _ := newIngestFixture()

	_, err := uc.Ingest(context.Background(), ports.IngestRequest{RemoteRef: "  "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
}

func TestIngestCancelledContextWritesNothing(t *testing.T) {
	uc, repo, store, _ := newIngestFixture()
	store.objects["d.txt"] = []byte("raw")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Ingest(ctx, ports.IngestRequest{
		RemoteRef:         "d.txt",
		DeclaredMediaType: "text/plain",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(repo.transcripts) != 0 {
		t.Fatalf("partial transcript written after cancellation")
	}
}

func TestReingestAppendsNewVersion(t *testing.T) {
	uc, repo, store, ex := newIngestFixture()

	doc, err := uc.Upload(context.Background(), "notes.txt", "text/plain", "owner-1",
		strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	first, err := uc.Reingest(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("first Reingest() error = %v", err)
	}

	store.objects[doc.RemoteRef] = []byte("v2")
	ex.outcome = domain.ExtractionOutcome{Text: "second pass"}

	second, err := uc.Reingest(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("second Reingest() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("re-ingest produced the same transcript id twice")
	}

	latest, err := uc.LatestTranscript(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("LatestTranscript() error = %v", err)
	}
	if latest.Content != "second pass" {
		t.Fatalf("latest = %q, want the newest version", latest.Content)
	}
	if len(repo.transcripts) != 2 {
		t.Fatalf("expected both versions kept, got %d", len(repo.transcripts))
	}
}

func TestReingestUnknownDocument(t *testing.T) {
	uc, _, _, _ := newIngestFixture()

	_, err := uc.Reingest(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestDeleteDocumentCascadesTranscripts(t *testing.T) {
	uc, repo, _, _ := newIngestFixture()

	doc, err := uc.Upload(context.Background(), "notes.txt", "text/plain", "owner-1",
		strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if _, err := uc.Reingest(context.Background(), doc.ID); err != nil {
		t.Fatalf("Reingest() error = %v", err)
	}

	if err := uc.DeleteDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if len(repo.transcripts) != 0 {
		t.Fatalf("transcripts survived the delete")
	}
	if _, err := uc.LatestTranscript(context.Background(), doc.ID); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found after delete", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"week 1 notes.txt", "week_1_notes.txt"},
		{"../../etc/passwd", "passwd"},
		{"Лекция.pdf", "______.pdf"},
		{"", "document.bin"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
