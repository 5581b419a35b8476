// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

// Latest is a chronological feed behind a hard inclusion gate: the text
// must exceed MinTextLength and the item must either have some activity
// or be younger than RecencyGate.
type Latest struct {
	config LatestConfig
}

var _ Strategy = (*Latest)(nil)

// NewLatest creates the Latest strategy.
func NewLatest(cfg LatestConfig) *Latest {
	return &Latest{config: cfg}
}

// Name implements Strategy.
func (l *Latest) Name() StrategyName { return StrategyLatest }

// Requirements implements Strategy.
func (l *Latest) Requirements() Requirements { return Requirements{OrderedFetch: true} }

// CandidateFilter implements Strategy.
func (l *Latest) CandidateFilter(rc *RankingContext) CandidateFilter {
	return CandidateFilter{Status: StatusPublished, Category: rc.Category}
}

// Eligible implements Strategy.
func (l *Latest) Eligible(item *ContentItem, rc *RankingContext) bool {
	if !item.IsPublished() || !matchesCategory(item, rc) {
		return false
	}
	if item.TextLength <= l.config.MinTextLength {
		return false
	}
	active := float64(item.Likes)+float64(item.Comments) >= float64(l.config.MinInteractions)
	recent := item.Age(rc.Now) < l.config.RecencyGate
	return active || recent
}

// Normalize implements Strategy.
func (l *Latest) Normalize(items []ContentItem, _ *RankingContext) NormalizationContext {
	return noNormalization(items)
}

// Score implements Strategy. The score is 1/(1+ageHours), monotone with
// the CreatedAt sort key.
func (l *Latest) Score(item *ContentItem, rc *RankingContext, _ *NormalizationContext) ScoredItem {
	recency := 1 / (1 + item.Age(rc.Now).Hours())
	return ScoredItem{
		Item:      *item,
		Score:     sanitizeScore(recency),
		Breakdown: map[string]float64{ComponentRecency: recency},
	}
}

// Less implements Strategy: newest first.
func (l *Latest) Less(a, b *ScoredItem) bool {
	return a.Item.CreatedAt.After(b.Item.CreatedAt)
}
