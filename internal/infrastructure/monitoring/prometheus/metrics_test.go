package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppMetrics_HTTP(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	done := m.TrackActive("POST")
	m.RecordHTTPRequest("POST", "/analyze-document", 200, 120*time.Millisecond)
	done()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/analyze-document",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="POST",path="/analyze-document"} 1`)
	assert.Contains(t, out, `test_unit_http_active_requests{method="POST"} 0`)
}

func TestAppMetrics_Domain(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordDocumentAnalyzed("Invoice", "pdf", time.Second)
	m.RecordDocumentProcessed("summarize", true)
	m.RecordClaimScored("High")
	m.RecordAnnotation(time.Millisecond)
	m.RecordAuthAttempt("login", false)
	m.RecordEventPublished("document.analyzed", true)
	m.RecordEventConsumed("document.analyzed", false)
	m.RecordError("http", "DOC_001")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_documents_analyzed_total{doc_type="Invoice"} 1`)
	assert.Contains(t, out, `test_unit_documents_processed_total{operation="summarize",status="success"} 1`)
	assert.Contains(t, out, `test_unit_analysis_duration_seconds_count{format="pdf"} 1`)
	assert.Contains(t, out, `test_unit_claims_scored_total{risk_level="High"} 1`)
	assert.Contains(t, out, `test_unit_annotation_duration_seconds_count 1`)
	assert.Contains(t, out, `test_unit_auth_attempts_total{operation="login",result="failure"} 1`)
	assert.Contains(t, out, `test_unit_events_published_total{status="success",topic="document.analyzed"} 1`)
	assert.Contains(t, out, `test_unit_events_consumed_total{status="failure",topic="document.analyzed"} 1`)
	assert.Contains(t, out, `test_unit_errors_total{code="DOC_001",component="http"} 1`)
}

func TestAppMetrics_CacheObserver(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordCacheHit("analysis")
	m.RecordCacheHit("analysis")
	m.RecordCacheMiss("analysis")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="analysis"} 2`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="analysis"} 1`)
}

func TestAppMetrics_NilIsNoop(t *testing.T) {
	var m *AppMetrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.TrackActive("GET")()
		m.RecordCacheHit("x")
		m.RecordClaimScored("Low")
	})
}
