// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"time"

	"github.com/tomtom215/nearby/internal/cache"
	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/metrics"
)

// CachedFollowGraph keeps recently resolved follow sets in an LRU. Errors
// are not cached. Returned sets are shared between callers and must not be
// modified.
type CachedFollowGraph struct {
	next  feed.FollowGraph
	cache *cache.LRU[map[string]struct{}]
}

var _ feed.FollowGraph = (*CachedFollowGraph)(nil)

// NewCachedFollowGraph wraps next with a cache of size entries living ttl.
func NewCachedFollowGraph(next feed.FollowGraph, size int, ttl time.Duration) *CachedFollowGraph {
	return &CachedFollowGraph{
		next:  next,
		cache: cache.NewLRU[map[string]struct{}](size, ttl),
	}
}

// Followed implements feed.FollowGraph.
func (c *CachedFollowGraph) Followed(ctx context.Context, userID string) (map[string]struct{}, error) {
	if set, ok := c.cache.Get(userID); ok {
		metrics.FollowCacheRequests.WithLabelValues("hit").Inc()
		return set, nil
	}
	metrics.FollowCacheRequests.WithLabelValues("miss").Inc()

	set, err := c.next.Followed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		set = map[string]struct{}{}
	}
	c.cache.Add(userID, set)
	return set, nil
}

// Invalidate drops userID's cached set, for use after a follow change.
func (c *CachedFollowGraph) Invalidate(userID string) {
	c.cache.Remove(userID)
}
