// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed request outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
)

var (
	// Feed Ranking Metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_feed_requests_total",
			Help: "Total number of feed ranking requests",
		},
		[]string{"strategy", "outcome"},
	)

	FeedRankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_feed_rank_duration_seconds",
			Help:    "End-to-end ranking duration including candidate fetch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	FeedCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_feed_candidates",
			Help:    "Number of candidates fetched per ranking request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
		[]string{"strategy"},
	)

	FeedItemsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_feed_items_excluded_total",
			Help: "Candidates excluded from scoring because they were malformed",
		},
		[]string{"strategy", "reason"},
	)

	// Repository Metrics
	RepositoryFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_repository_fetch_duration_seconds",
			Help:    "Duration of candidate fetches by backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "result"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nearby_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nearby_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	FollowCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_follow_cache_requests_total",
			Help: "Follow set cache lookups",
		},
		[]string{"result"}, // result: "hit", "miss"
	)

	// Store Maintenance Metrics
	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_store_gc_runs_total",
			Help: "Total number of store garbage collection passes",
		},
		[]string{"result"}, // result: "success", "error"
	)

	StoreGCDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nearby_store_gc_duration_seconds",
			Help:    "Duration of store garbage collection passes",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
	)
)

// RecordFeedRequest records the outcome and latency of one ranking request.
func RecordFeedRequest(strategy, outcome string, duration time.Duration) {
	if strategy == "" {
		strategy = "unknown"
	}
	FeedRequestsTotal.WithLabelValues(strategy, outcome).Inc()
	FeedRankDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// ObserveCandidates records the candidate count of one request.
func ObserveCandidates(strategy string, n int) {
	FeedCandidates.WithLabelValues(strategy).Observe(float64(n))
}

// RecordExcludedItem counts a malformed candidate.
func RecordExcludedItem(strategy, reason string) {
	FeedItemsExcluded.WithLabelValues(strategy, reason).Inc()
}

// RecordRepositoryFetch records one backend fetch.
func RecordRepositoryFetch(backend string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	RepositoryFetchDuration.WithLabelValues(backend, result).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreGC records one garbage collection pass.
func RecordStoreGC(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreGCRuns.WithLabelValues(result).Inc()
	StoreGCDuration.Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
