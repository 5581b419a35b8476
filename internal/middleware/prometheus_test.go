// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/nearby/internal/metrics"
)

func newMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/metricstest/{strategy}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/api/v1/metricstest-fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/api/v1/metricstest-implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
	})
	return r
}

func TestPrometheusMetrics(t *testing.T) {
	router := newMetricsRouter()

	t.Run("labels by route pattern", func(t *testing.T) {
		pattern := "/api/v1/metricstest/{strategy}"
		before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "200"))

		for _, path := range []string{"/api/v1/metricstest/discover", "/api/v1/metricstest/popular"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
		}

		after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "200"))
		if after-before != 2 {
			t.Errorf("requests counted = %v, want 2", after-before)
		}
	})

	t.Run("records error status", func(t *testing.T) {
		pattern := "/api/v1/metricstest-fail"
		before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "503"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, pattern, nil))

		after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "503"))
		if after-before != 1 {
			t.Errorf("503 requests counted = %v, want 1", after-before)
		}
	})

	t.Run("implicit 200", func(t *testing.T) {
		pattern := "/api/v1/metricstest-implicit"
		before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "200"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, pattern, nil))

		after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", pattern, "200"))
		if after-before != 1 {
			t.Errorf("implicit 200 counted = %v, want 1", after-before)
		}
	})

	t.Run("active requests return to baseline", func(t *testing.T) {
		baseline := testutil.ToFloat64(metrics.APIActiveRequests)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metricstest/latest", nil))
		if got := testutil.ToFloat64(metrics.APIActiveRequests); got != baseline {
			t.Errorf("active requests = %v, want %v", got, baseline)
		}
	})
}

func TestRoutePattern_Unmatched(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := routePattern(req); got != unmatchedRoute {
		t.Errorf("routePattern() = %q, want %q", got, unmatchedRoute)
	}
}

func BenchmarkPrometheusMetrics(b *testing.B) {
	router := newMetricsRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metricstest/discover", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
