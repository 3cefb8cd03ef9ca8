package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ollamaui/internal/query"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.Bytes()
}

// TestMetricsMiddleware_EmitsRequestCounters verifies that wrapping a handler
// with MetricsMiddleware exposes request metrics via /metrics.
func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body := scrape(t); !bytes.Contains(body, []byte("ollamaui_http_requests_total")) {
		t.Fatalf("expected ollamaui_http_requests_total in metrics")
	}
}

func TestObserveCycle(t *testing.T) {
	observeCycle(query.StateEmptyPromptWarning, 0)
	observeCycle(query.StateConnectionFailed, 20*time.Millisecond)
	body := scrape(t)
	if !bytes.Contains(body, []byte(`ollamaui_query_cycles_total{state="empty_prompt_warning"}`)) {
		t.Fatalf("missing cycle counter for empty_prompt_warning")
	}
	if !bytes.Contains(body, []byte(`ollamaui_query_generate_duration_seconds_count{state="connection_failed"}`)) {
		t.Fatalf("missing generate histogram for connection_failed")
	}
	if bytes.Contains(body, []byte(`ollamaui_query_generate_duration_seconds_count{state="empty_prompt_warning"}`)) {
		t.Fatalf("cycles without a call must not be timed")
	}
}
