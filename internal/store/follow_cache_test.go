// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/nearby/internal/metrics"
)

// countingGraph returns a fixed set and counts calls.
type countingGraph struct {
	calls atomic.Int32
	set   map[string]struct{}
	err   error
}

func (g *countingGraph) Followed(context.Context, string) (map[string]struct{}, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return g.set, nil
}

func TestCachedFollowGraph_CachesHits(t *testing.T) {
	// Not parallel: asserts on shared counters.
	hitsBefore := testutil.ToFloat64(metrics.FollowCacheRequests.WithLabelValues("hit"))

	next := &countingGraph{set: map[string]struct{}{"author-1": {}}}
	g := NewCachedFollowGraph(next, 10, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		set, err := g.Followed(ctx, "u1")
		if err != nil {
			t.Fatalf("Followed() error = %v", err)
		}
		if _, ok := set["author-1"]; !ok {
			t.Fatalf("Followed() = %v, want author-1", set)
		}
	}

	if next.calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", next.calls.Load())
	}
	if got := testutil.ToFloat64(metrics.FollowCacheRequests.WithLabelValues("hit")) - hitsBefore; got != 2 {
		t.Errorf("hit counter delta = %v, want 2", got)
	}

	g.Invalidate("u1")
	if _, err := g.Followed(ctx, "u1"); err != nil {
		t.Fatalf("Followed() error = %v", err)
	}
	if next.calls.Load() != 2 {
		t.Errorf("backend calls after invalidate = %d, want 2", next.calls.Load())
	}
}

func TestCachedFollowGraph_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &countingGraph{err: errors.New("redis down")}
	g := NewCachedFollowGraph(next, 10, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := g.Followed(context.Background(), "u1"); err == nil {
			t.Fatal("Followed() error = nil, want error")
		}
	}
	if next.calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2", next.calls.Load())
	}
}

func TestCachedFollowGraph_NilSetBecomesEmpty(t *testing.T) {
	t.Parallel()

	g := NewCachedFollowGraph(&countingGraph{}, 10, time.Minute)
	set, err := g.Followed(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Followed() error = %v", err)
	}
	if set == nil || len(set) != 0 {
		t.Errorf("Followed() = %v, want empty non-nil set", set)
	}
}
