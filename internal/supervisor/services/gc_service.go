// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package services

import (
	"context"
	"time"

	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/metrics"
)

// GarbageCollector is satisfied by *store.BadgerRepository.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService runs value log garbage collection on a fixed interval.
//
// A failed pass is logged and counted but does not end the service; the
// next tick tries again.
type StoreGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewStoreGCService creates the service. A non-positive interval means 10m.
func NewStoreGCService(gc GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		gc:       gc,
		interval: interval,
		name:     "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", s.interval).Msg("Store GC started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Store GC stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *StoreGCService) runOnce() {
	start := time.Now()
	err := s.gc.RunGC()
	duration := time.Since(start)
	metrics.RecordStoreGC(duration, err)

	if err != nil {
		logging.Error().Err(err).Msg("Store GC pass failed")
		return
	}
	logging.Debug().Dur("duration", duration).Msg("Store GC pass complete")
}

// String implements fmt.Stringer.
func (s *StoreGCService) String() string {
	return s.name
}
