package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	ingestsTotal       *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	extractionWarnings *prometheus.CounterVec
	exportsTotal       *prometheus.CounterVec
	exportBytes        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studycraft",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studycraft",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "studycraft",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	ingestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studycraft",
			Subsystem: "pipeline",
			Name:      "ingests_total",
			Help:      "Total extraction runs by declared media type and outcome.",
		},
		[]string{"service", "media_type", "status"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studycraft",
			Subsystem: "pipeline",
			Name:      "extraction_duration_seconds",
			Help:      "Extraction run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "media_type"},
	)
	extractionWarnings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studycraft",
			Subsystem: "pipeline",
			Name:      "extraction_warnings_total",
			Help:      "Total non-fatal warnings attached to transcripts.",
		},
		[]string{"service", "media_type"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studycraft",
			Subsystem: "pipeline",
			Name:      "exports_total",
			Help:      "Total artifact exports by kind, format and outcome.",
		},
		[]string{"service", "kind", "format", "status"},
	)
	exportBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studycraft",
			Subsystem: "pipeline",
			Name:      "export_bytes",
			Help:      "Size distribution of exported files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		ingestsTotal,
		extractionDuration,
		extractionWarnings,
		exportsTotal,
		exportBytes,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		ingestsTotal:       ingestsTotal,
		extractionDuration: extractionDuration,
		extractionWarnings: extractionWarnings,
		exportsTotal:       exportsTotal,
		exportBytes:        exportBytes,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/artifacts/"):
		return "/v1/artifacts/{artifact_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordIngest(service, mediaType, status string, warnings int, duration time.Duration) {
	if mediaType == "" {
		mediaType = "unknown"
	}
	m.ingestsTotal.WithLabelValues(service, mediaType, status).Inc()
	m.extractionDuration.WithLabelValues(service, mediaType).Observe(duration.Seconds())
	if warnings > 0 {
		m.extractionWarnings.WithLabelValues(service, mediaType).Add(float64(warnings))
	}
}

func (m *HTTPServerMetrics) RecordExport(service, kind, format, status string, sizeBytes int) {
	if kind == "" {
		kind = "unknown"
	}
	m.exportsTotal.WithLabelValues(service, kind, format, status).Inc()
	if sizeBytes > 0 {
		m.exportBytes.WithLabelValues(service, format).Observe(float64(sizeBytes))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
