// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package api provides the HTTP surface of the feed ranking service.

Routes:

	GET /api/v1/feeds/{strategy}   ranked feed page (discover, popular, latest, saved)
	GET /api/v1/health/live        liveness probe
	GET /api/v1/health/ready       readiness probe, pings registered dependencies
	GET /metrics                   Prometheus exposition

All JSON responses use the models.APIResponse envelope. Engine errors are
mapped as follows:

	invalid request          400 VALIDATION_ERROR
	repository unavailable   503 SERVICE_UNAVAILABLE (Retry-After: 5)
	client canceled          499 REQUEST_CANCELED
	other                    500 INTERNAL_ERROR

The requester is identified by the X-User-ID header, set by an upstream
gateway. The saved strategy rejects anonymous requests.

Middleware order is request ID, real IP, access log, panic recovery and
CORS globally, then rate limiting, security headers, Prometheus metrics and
gzip compression on the feed routes.
*/
package api
