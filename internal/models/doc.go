// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

// Package models defines the HTTP wire envelope shared by all endpoints.
// Feed payloads themselves are feed.Response values placed in Data.
package models
