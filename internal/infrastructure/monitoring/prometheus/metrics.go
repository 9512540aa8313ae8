package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service records.  A nil *AppMetrics is
// valid and records nothing.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	AuthAttemptsTotal CounterVec

	DocumentsProcessedTotal CounterVec
	DocumentsAnalyzedTotal  CounterVec
	AnalysisDuration        HistogramVec
	AnnotationDuration      HistogramVec
	ClaimsScoredTotal       CounterVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	EventsPublishedTotal CounterVec
	EventsConsumedTotal  CounterVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultAnnotateDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method"),

		AuthAttemptsTotal: collector.RegisterCounter("auth_attempts_total", "Register and login attempts", "operation", "result"),

		DocumentsProcessedTotal: collector.RegisterCounter("documents_processed_total", "Uploaded documents by operation", "operation", "status"),
		DocumentsAnalyzedTotal:  collector.RegisterCounter("documents_analyzed_total", "Documents analyzed by detected type", "doc_type"),
		AnalysisDuration:        collector.RegisterHistogram("analysis_duration_seconds", "Document analysis duration", DefaultAnalysisDurationBuckets, "format"),
		AnnotationDuration:      collector.RegisterHistogram("annotation_duration_seconds", "Highlight annotation duration", DefaultAnnotateDurationBuckets),
		ClaimsScoredTotal:       collector.RegisterCounter("claims_scored_total", "Claims scored by risk level", "risk_level"),

		CacheHitsTotal:   collector.RegisterCounter("cache_hits_total", "Cache hits", "cache"),
		CacheMissesTotal: collector.RegisterCounter("cache_misses_total", "Cache misses", "cache"),

		EventsPublishedTotal: collector.RegisterCounter("events_published_total", "Events published", "topic", "status"),
		EventsConsumedTotal:  collector.RegisterCounter("events_consumed_total", "Events consumed", "topic", "status"),

		ErrorsTotal: collector.RegisterCounter("errors_total", "Errors by component", "component", "code"),
	}
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// TrackActive increments the in-flight gauge and returns the matching
// decrement.
func (m *AppMetrics) TrackActive(method string) func() {
	if m == nil {
		return func() {}
	}
	g := m.HTTPActiveRequests.WithLabelValues(method)
	g.Inc()
	return g.Dec
}

func (m *AppMetrics) RecordAuthAttempt(operation string, ok bool) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(operation, statusLabel(ok)).Inc()
}

// RecordDocumentProcessed counts an upload handled by summarize, classify or
// analyze.
func (m *AppMetrics) RecordDocumentProcessed(operation string, ok bool) {
	if m == nil {
		return
	}
	m.DocumentsProcessedTotal.WithLabelValues(operation, statusLabel(ok)).Inc()
}

func (m *AppMetrics) RecordDocumentAnalyzed(docType, format string, d time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsAnalyzedTotal.WithLabelValues(docType).Inc()
	m.AnalysisDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *AppMetrics) RecordAnnotation(d time.Duration) {
	if m == nil {
		return
	}
	m.AnnotationDuration.WithLabelValues().Observe(d.Seconds())
}

func (m *AppMetrics) RecordClaimScored(riskLevel string) {
	if m == nil {
		return
	}
	m.ClaimsScoredTotal.WithLabelValues(riskLevel).Inc()
}

// RecordCacheHit and RecordCacheMiss let AppMetrics observe a redis cache.
func (m *AppMetrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

func (m *AppMetrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *AppMetrics) RecordEventPublished(topic string, ok bool) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic, statusLabel(ok)).Inc()
}

func (m *AppMetrics) RecordEventConsumed(topic string, ok bool) {
	if m == nil {
		return
	}
	m.EventsConsumedTotal.WithLabelValues(topic, statusLabel(ok)).Inc()
}

func (m *AppMetrics) RecordError(component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
