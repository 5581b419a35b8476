// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package metrics provides Prometheus instrumentation for the feed service.

All collectors are registered with the default registry through promauto and
exposed at /metrics.

# Available Metrics

Feed Metrics:
  - nearby_feed_requests_total: ranking requests (counter)
    Labels: strategy, outcome (success, invalid, unavailable, canceled)
  - nearby_feed_rank_duration_seconds: ranking latency (histogram)
  - nearby_feed_candidates: candidates fetched per request (histogram)
  - nearby_feed_items_excluded_total: malformed candidates dropped (counter)
    Labels: strategy, reason

Repository Metrics:
  - nearby_repository_fetch_duration_seconds: backend fetch latency
    Labels: backend (memory, badger, postgres, redis), result

API Metrics:
  - nearby_api_requests_total, nearby_api_request_duration_seconds
    Labels: method, endpoint (chi route pattern), status_code
  - nearby_api_active_requests: in-flight requests (gauge)

Circuit Breaker Metrics:
  - nearby_circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - nearby_circuit_breaker_requests_total: success, failure, rejected
  - nearby_circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	resp, err := engine.Rank(ctx, req)
	metrics.RecordFeedRequest("discover", metrics.OutcomeSuccess, time.Since(start))
*/
package metrics
