// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

// Saved returns the requester's saved items that are still published,
// most recently saved first. Ordering uses SavedAt, not CreatedAt.
type Saved struct{}

var _ Strategy = (*Saved)(nil)

// NewSaved creates the Saved strategy.
func NewSaved() *Saved {
	return &Saved{}
}

// Name implements Strategy.
func (s *Saved) Name() StrategyName { return StrategySaved }

// Requirements implements Strategy.
func (s *Saved) Requirements() Requirements {
	return Requirements{User: true, SavedSet: true, OrderedFetch: true}
}

// CandidateFilter implements Strategy. No status constraint is pushed down
// so stale references are visible to Eligible.
func (s *Saved) CandidateFilter(rc *RankingContext) CandidateFilter {
	return CandidateFilter{SavedByUser: rc.UserID, Category: rc.Category}
}

// Eligible implements Strategy.
func (s *Saved) Eligible(item *ContentItem, rc *RankingContext) bool {
	return item.IsPublished() && item.SavedAt != nil && matchesCategory(item, rc)
}

// Normalize implements Strategy.
func (s *Saved) Normalize(items []ContentItem, _ *RankingContext) NormalizationContext {
	return noNormalization(items)
}

// Score implements Strategy.
func (s *Saved) Score(item *ContentItem, rc *RankingContext, _ *NormalizationContext) ScoredItem {
	var recency float64
	if item.SavedAt != nil {
		since := rc.Now.Sub(*item.SavedAt)
		if since < 0 {
			since = 0
		}
		recency = 1 / (1 + since.Hours())
	}
	return ScoredItem{
		Item:      *item,
		Score:     sanitizeScore(recency),
		Breakdown: map[string]float64{ComponentSaveRecency: recency},
	}
}

// Less implements Strategy: most recently saved first.
func (s *Saved) Less(a, b *ScoredItem) bool {
	if a.Item.SavedAt == nil || b.Item.SavedAt == nil {
		return a.Item.SavedAt != nil && b.Item.SavedAt == nil
	}
	return a.Item.SavedAt.After(*b.Item.SavedAt)
}
