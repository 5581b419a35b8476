// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:    "alive",
			Version:   h.version,
			Uptime:    time.Since(h.startTime).Seconds(),
			Timestamp: time.Now().UTC(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 only when every registered dependency answers Ping, 503
// otherwise. The candidate source is pinged through its circuit breaker,
// so an open breaker reports not ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	names, checks := h.readinessChecks()

	results := make(map[string]string, len(names))
	ready := true
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := checks[name].Ping(ctx)
		cancel()

		if err != nil {
			ready = false
			results[name] = "down"
			logging.Ctx(r.Context()).Warn().
				Str("check", name).
				Str("error", sanitizeLogValue(err.Error())).
				Msg("Readiness check failed")
			continue
		}
		results[name] = "up"
	}

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: models.HealthStatus{
			Status:    status,
			Version:   h.version,
			Uptime:    time.Since(h.startTime).Seconds(),
			Checks:    results,
			Timestamp: time.Now().UTC(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
