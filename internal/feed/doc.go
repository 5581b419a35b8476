// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

// Package feed implements the multi-strategy ranking engine behind the
// Discover, Popular, Latest and Saved feeds.
//
// # Architecture
//
// A ranking request flows through four stages:
//
//   - Candidate fetch: a Repository returns unranked content records with
//     engagement counters already populated
//   - Filter: the selected Strategy decides which candidates are eligible
//   - Score: each eligible item is scored against a RankingContext and a
//     per-request NormalizationContext
//   - Paginate: one stable sort over the full filtered set, then a page slice
//
// The engine owns no persistent state. Every request computes against its own
// freshly fetched snapshot, so concurrent requests never contend on shared
// data.
//
// # Strategies
//
//   - Discover: weighted sum of engagement, freshness, diversity and quality,
//     plus capped momentum and location bonuses
//   - Popular: decayed weighted engagement within a 24h, 7d or 30d window,
//     with a strict viral multiplier
//   - Latest: chronological with a hard content and activity gate
//   - Saved: the requester's saved items ordered by save time
//
// # Usage
//
//	engine, err := feed.NewEngine(feed.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetRepository(repo)
//	engine.SetFollowGraph(follows)
//
//	resp, err := engine.Rank(ctx, feed.Request{
//	    Strategy: feed.StrategyDiscover,
//	    UserID:   "u-42",
//	    Page:     1,
//	    PageSize: 20,
//	})
//
// # Errors
//
// Requests that fail validation return an error wrapping ErrInvalidRequest
// before any repository call is made. Candidate fetch failures wrap
// ErrRepositoryUnavailable. A malformed individual record never fails the
// request; it is excluded and reported in Response.Diagnostics.
//
// # Thread Safety
//
// Engine is safe for concurrent use. Scoring functions are pure.
package feed
