// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package cache provides a thread-safe LRU cache with per-entry TTL.

The store package uses it to keep recently resolved follow sets in memory so
personalised Discover requests do not hit Redis or PostgreSQL every time.

Operations are O(1): a hashmap indexes a doubly-linked list ordered by
recency. Expired entries are dropped lazily on access, or eagerly with
CleanupExpired.

	c := cache.NewLRU[map[string]struct{}](10000, 30*time.Second)
	c.Add("user-1", followed)
	if set, ok := c.Get("user-1"); ok {
	    ...
	}
*/
package cache
