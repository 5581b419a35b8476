// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import "math"

// Requirements describes what a strategy needs from the request and its
// collaborators. The engine validates requests against it.
type Requirements struct {
	// User is set when the strategy cannot run anonymously.
	User bool

	// Timeframe is set when the strategy accepts a timeframe parameter.
	Timeframe bool

	// FollowGraph is set when scoring consults the followed-author set.
	FollowGraph bool

	// SavedSet is set when candidates come from the user's saved set.
	SavedSet bool

	// OrderedFetch is set when the repository's fetch order (newest first,
	// or most recently saved first) agrees with the strategy's sort key, so
	// a capped fetch still yields the head of the full ranking. Strategies
	// without it are always fetched uncapped.
	OrderedFetch bool
}

// NormalizationContext carries corpus-relative reference values computed
// once per request from the eligible candidates.
type NormalizationContext struct {
	// EngagementScale is the log-normalization reference for Discover
	// engagement: max(floor, largest raw engagement among candidates).
	EngagementScale float64

	// Candidates is the number of eligible candidates.
	Candidates int
}

// Strategy is one feed ranking algorithm. Implementations must be pure:
// no I/O and no mutation of the item or context.
type Strategy interface {
	// Name returns the strategy identifier.
	Name() StrategyName

	// Requirements describes request constraints.
	Requirements() Requirements

	// CandidateFilter returns the coarse filter for the repository fetch.
	CandidateFilter(rc *RankingContext) CandidateFilter

	// Eligible is the hard inclusion filter. Excluded items are never scored.
	Eligible(item *ContentItem, rc *RankingContext) bool

	// Normalize computes corpus-relative values for Score.
	Normalize(items []ContentItem, rc *RankingContext) NormalizationContext

	// Score returns the item's score and component breakdown.
	Score(item *ContentItem, rc *RankingContext, norm *NormalizationContext) ScoredItem

	// Less reports whether a sorts strictly before b by the strategy's
	// primary key. The engine breaks remaining ties by ID ascending.
	Less(a, b *ScoredItem) bool
}

// NewStrategies builds the strategy registry from configuration.
func NewStrategies(cfg *Config) map[StrategyName]Strategy {
	return map[StrategyName]Strategy{
		StrategyDiscover: NewDiscover(cfg.Discover),
		StrategyPopular:  NewPopular(cfg.Popular),
		StrategyLatest:   NewLatest(cfg.Latest),
		StrategySaved:    NewSaved(),
	}
}

// byScoreDesc is the primary ordering for score-ranked strategies.
func byScoreDesc(a, b *ScoredItem) bool {
	return a.Score > b.Score
}

// noNormalization is used by strategies with no corpus-relative terms.
func noNormalization(items []ContentItem) NormalizationContext {
	return NormalizationContext{EngagementScale: 1, Candidates: len(items)}
}

// engagementScale returns max(floor, max weighted engagement).
//
//nolint:gocritic // value param keeps call sites terse
func engagementScale(items []ContentItem, w InteractionWeights, floor float64) float64 {
	scale := floor
	for i := range items {
		scale = math.Max(scale, w.Apply(&items[i]))
	}
	return scale
}

// matchesCategory applies the optional category filter.
func matchesCategory(item *ContentItem, rc *RankingContext) bool {
	return rc.Category == "" || item.Category == rc.Category
}
