package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encoreinstant/avito-moderation/internal/platform/metrics"
)

func TestLatency_LabelsByRoutePattern(t *testing.T) {
	mm := metrics.NewMetricsManager("test")

	r := chi.NewRouter()
	r.Use(Latency(mm))
	r.Get("/api/ads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/ads/1", "/api/ads/2", "/api/ads/3"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// All three ids land in one series under the route pattern; labelling by
	// raw path would have produced three.
	assert.Equal(t, 1, testutil.CollectAndCount(mm.RequestLatency, "test_http_request_latency_seconds"))
}

func TestLatency_NilManagerPassesThrough(t *testing.T) {
	handler := Latency(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatever", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
