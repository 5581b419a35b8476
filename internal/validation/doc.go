// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator caches struct metadata, reports field
// errors by their JSON names, and registers a "slug" tag for category
// identifiers.
//
// # Quick Start
//
//	type FeedQuery struct {
//	    Page     int    `json:"page" validate:"gte=0"`
//	    Category string `json:"category" validate:"omitempty,slug"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
