package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareCountsRequestsPerRoute(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for range 3 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `meridian_http_requests_total{code="200",route="/things/{id}"} 3`)
	assert.Contains(t, body, "meridian_http_request_duration_seconds")
}

func TestMiddlewareRecordsStatusCode(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Contains(t, scrape(t, m), `code="404"`)
}

func TestRecordAuthzDecision(t *testing.T) {
	m := NewMetrics()
	m.RecordAuthzDecision("allowed")
	m.RecordAuthzDecision("allowed")
	m.RecordAuthzDecision("denied")

	body := scrape(t, m)
	assert.Contains(t, body, `meridian_authz_decisions_total{outcome="allowed"} 2`)
	assert.Contains(t, body, `meridian_authz_decisions_total{outcome="denied"} 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordAuthzDecision("allowed")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutePatternFallsBackToUnknown(t *testing.T) {
	m := NewMetrics()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))

	assert.True(t, strings.Contains(scrape(t, m), `route="unknown"`))
}
