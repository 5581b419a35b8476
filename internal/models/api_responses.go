// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint responds with.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"strategy": "discover", "items": [...], "page": 1, ...},
//	  "metadata": {"timestamp": "2026-03-14T12:00:00Z", "query_time_ms": 4}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "page_size: must be between 1 and 100",
//	    "details": {"field": "page_size"}
//	  },
//	  "metadata": {"timestamp": "2026-03-14T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error.
//
// Error codes:
//   - VALIDATION_ERROR: Invalid request parameters (400)
//   - NOT_FOUND: Unknown route (404)
//   - SERVICE_UNAVAILABLE: Candidate source unavailable (503)
//   - REQUEST_CANCELED: Client went away before the feed was ranked (499)
//   - INTERNAL_ERROR: Unexpected failure (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    float64           `json:"uptime_seconds"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
