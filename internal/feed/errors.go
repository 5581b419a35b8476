// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned for requests rejected before any
	// repository call: bad paging, unknown strategy, unsupported timeframe.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRepositoryUnavailable is returned when the candidate source or the
	// follow graph fails or times out. Callers may retry.
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)

// RequestError identifies the request field that failed validation.
// It unwraps to ErrInvalidRequest.
type RequestError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidRequest).
func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

func invalidField(field, format string, args ...interface{}) error {
	return &RequestError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Reasons attached to excluded candidates.
const (
	ReasonMissingID         = "missing_id"
	ReasonMissingCreatedAt  = "missing_created_at"
	ReasonNegativeCounter   = "negative_counter"
	ReasonNegativeLength    = "negative_text_length"
	ReasonInvalidRelevance  = "invalid_location_relevance"
	ReasonInvalidLocation   = "invalid_location"
	ReasonMissingSavedAt    = "missing_saved_at"
	ReasonDuplicateID       = "duplicate_id"
	ReasonNegativeRecentCnt = "negative_recent_interactions"
)
