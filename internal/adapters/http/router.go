package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/core/ports"
	"github.com/dsemenov/studycraft/internal/observability/metrics"
)

const serviceName = "api"

type Options struct {
	RateLimitPerSecond float64
	RateLimitBurst     int
	MaxUploadBytes     int64
}

type Router struct {
	ingestor ports.DocumentIngestor
	exporter ports.ArtifactExporter
	metrics  *metrics.HTTPServerMetrics
	opts     Options
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	exporter ports.ArtifactExporter,
	m *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 100 << 20
	}
	return &Router{
		ingestor: ingestor,
		exporter: exporter,
		metrics:  m,
		opts:     opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/ingest", rt.ingestDocument)
	mux.HandleFunc("POST /v1/documents/{id}/transcripts", rt.reingestDocument)
	mux.HandleFunc("GET /v1/documents/{id}/transcript", rt.latestTranscript)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/artifacts", rt.createArtifact)
	mux.HandleFunc("GET /v1/artifacts/{id}/export", rt.exportArtifact)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitPerSecond, rt.opts.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	mediaType := fileHeader.Header.Get("Content-Type")
	doc, err := rt.ingestor.Upload(r.Context(), fileHeader.Filename, mediaType, r.FormValue("owner_id"), file)
	if err != nil {
		rt.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) ingestDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RemoteRef string `json:"remote_ref"`
		MediaType string `json:"media_type"`
		OwnerID   string `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	start := time.Now()
	transcript, err := rt.ingestor.Ingest(r.Context(), ports.IngestRequest{
		RemoteRef:         req.RemoteRef,
		DeclaredMediaType: req.MediaType,
		OwnerID:           req.OwnerID,
	})
	rt.recordIngest(req.MediaType, transcript, err, start)
	if err != nil {
		rt.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transcript)
}

func (rt *Router) reingestDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	transcript, err := rt.ingestor.Reingest(r.Context(), r.PathValue("id"))
	rt.recordIngest("", transcript, err, start)
	if err != nil {
		rt.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transcript)
}

func (rt *Router) latestTranscript(w http.ResponseWriter, r *http.Request) {
	transcript, err := rt.ingestor.LatestTranscript(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transcript)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.ingestor.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		rt.writeMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) createArtifact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind    string                 `json:"kind"`
		Title   string                 `json:"title"`
		OwnerID string                 `json:"owner_id"`
		Content domain.ArtifactContent `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	artifact, err := rt.exporter.CreateArtifact(r.Context(), domain.ArtifactKind(req.Kind), req.Title, req.OwnerID, req.Content)
	if err != nil {
		rt.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artifact)
}

func (rt *Router) exportArtifact(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'format' is required")
		return
	}

	artifactID := r.PathValue("id")
	file, err := rt.exporter.Export(r.Context(), artifactID, domain.TargetFormat(format))
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, "unknown", format, "error", 0)
		}
		rt.writeMappedError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, string(file.Kind), format, "ok", len(file.Buffer))
	}

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(file.Buffer)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Buffer)
}

func (rt *Router) recordIngest(mediaType string, transcript *domain.Transcript, err error, start time.Time) {
	if rt.metrics == nil {
		return
	}
	status := "ok"
	warnings := 0
	if err != nil {
		status = "error"
	} else if transcript != nil {
		warnings = len(transcript.Warnings)
	}
	rt.metrics.RecordIngest(serviceName, mediaType, status, warnings, time.Since(start))
}

func (rt *Router) writeMappedError(w http.ResponseWriter, err error) {
	writeError(w, mapErrorToHTTPStatus(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
