// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package middleware provides HTTP middleware components for the feed API.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled by
    chi route pattern
  - AccessLog: one zerolog line per request

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/feeds/{strategy}", handler.Feed)
	})

PrometheusMetrics reads the route pattern after the handler returns, so it
must be registered on a router (or sub-router) whose routes it wraps.
*/
package middleware
