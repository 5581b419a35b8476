// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/nearby/internal/feed"
)

// FeedRanker ranks one feed page. *feed.Engine implements it.
type FeedRanker interface {
	Rank(ctx context.Context, req feed.Request) (*feed.Response, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// readinessTimeout bounds each readiness check.
const readinessTimeout = 2 * time.Second

// Handler serves the feed and health endpoints.
type Handler struct {
	ranker    FeedRanker
	version   string
	startTime time.Time

	mu     sync.RWMutex
	checks map[string]Pinger
}

// NewHandler creates a handler around a ranker.
func NewHandler(ranker FeedRanker, version string) *Handler {
	return &Handler{
		ranker:    ranker,
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]Pinger),
	}
}

// AddReadinessCheck registers a dependency that must answer Ping for the
// service to report ready.
func (h *Handler) AddReadinessCheck(name string, p Pinger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = p
}

// readinessChecks returns a stable-ordered snapshot of the checks.
func (h *Handler) readinessChecks() ([]string, map[string]Pinger) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.checks))
	checks := make(map[string]Pinger, len(h.checks))
	for name, p := range h.checks {
		names = append(names, name)
		checks[name] = p
	}
	sort.Strings(names)
	return names, checks
}
