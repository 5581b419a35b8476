// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/models"
	"github.com/tomtom215/nearby/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRequestCanceled    = "REQUEST_CANCELED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the nginx convention for a client that went
// away before the response was ready.
const StatusClientClosedRequest = 499

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, data interface{}, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondRankError maps an engine error onto an HTTP status.
//
//	ErrInvalidRequest        -> 400
//	ErrRepositoryUnavailable -> 503
//	deadline exceeded        -> 503
//	context canceled         -> 499
//	anything else            -> 500
func respondRankError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.Ctx(r.Context())

	var verr *validation.RequestValidationError
	var rerr *feed.RequestError

	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, ErrCodeValidation, apiErr.Message, apiErr.Details)

	case errors.As(err, &rerr):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, rerr.Error(),
			map[string]interface{}{"field": rerr.Field})

	case errors.Is(err, feed.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)

	case errors.Is(err, feed.ErrRepositoryUnavailable), errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Str("error", sanitizeLogValue(err.Error())).Msg("Feed unavailable")
		w.Header().Set("Retry-After", "5")
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Feed temporarily unavailable, retry later", nil)

	case errors.Is(err, context.Canceled):
		logger.Debug().Msg("Client canceled feed request")
		respondError(w, StatusClientClosedRequest, ErrCodeRequestCanceled, "Request canceled", nil)

	default:
		logger.Error().Str("error", sanitizeLogValue(err.Error())).Msg("Feed ranking failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}
