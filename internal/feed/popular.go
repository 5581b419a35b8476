// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"math"
	"time"
)

// Popular ranks items created within the requested timeframe by decayed,
// weighted engagement. Items whose interaction rate strictly exceeds the
// viral threshold receive a multiplier.
type Popular struct {
	config PopularConfig
}

var _ Strategy = (*Popular)(nil)

// NewPopular creates the Popular strategy.
//
//nolint:gocritic // config copied once at construction
func NewPopular(cfg PopularConfig) *Popular {
	return &Popular{config: cfg}
}

// Name implements Strategy.
func (p *Popular) Name() StrategyName { return StrategyPopular }

// Requirements implements Strategy.
func (p *Popular) Requirements() Requirements {
	return Requirements{Timeframe: true}
}

// window returns the active timeframe length, falling back to the default.
func (p *Popular) window(rc *RankingContext) time.Duration {
	if d, ok := rc.Timeframe.Duration(); ok {
		return d
	}
	d, _ := p.config.DefaultTimeframe.Duration()
	return d
}

// CandidateFilter implements Strategy.
func (p *Popular) CandidateFilter(rc *RankingContext) CandidateFilter {
	return CandidateFilter{
		Status:   StatusPublished,
		Category: rc.Category,
		Since:    rc.Now.Add(-p.window(rc)),
	}
}

// Eligible implements Strategy. Items outside the window are excluded.
func (p *Popular) Eligible(item *ContentItem, rc *RankingContext) bool {
	if !item.IsPublished() || !matchesCategory(item, rc) {
		return false
	}
	return item.Age(rc.Now) <= p.window(rc)
}

// Normalize implements Strategy.
func (p *Popular) Normalize(items []ContentItem, _ *RankingContext) NormalizationContext {
	return noNormalization(items)
}

// Score implements Strategy.
func (p *Popular) Score(item *ContentItem, rc *RankingContext, _ *NormalizationContext) ScoredItem {
	age := item.Age(rc.Now)
	if age < p.config.MinAge {
		age = p.config.MinAge
	}

	base := p.config.Weights.Apply(item)
	decay := ExponentialDecay(age, p.config.HalfLife)
	rate := item.Interactions() / age.Hours()

	multiplier := 1.0
	if rate > p.config.ViralThreshold {
		multiplier = p.config.ViralMultiplier
	}

	return ScoredItem{
		Item:  *item,
		Score: sanitizeScore(base * decay * multiplier),
		Breakdown: map[string]float64{
			ComponentBase:  base,
			ComponentDecay: decay,
			ComponentViral: multiplier,
			ComponentRate:  sanitizeRate(rate),
		},
	}
}

// Less implements Strategy.
func (p *Popular) Less(a, b *ScoredItem) bool { return byScoreDesc(a, b) }

func sanitizeRate(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate
}
