// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"math"
	"time"
)

// Discover ranks published content by a weighted blend of engagement,
// freshness, author novelty and quality, plus capped momentum and location
// bonuses. It never excludes a published item.
type Discover struct {
	config DiscoverConfig
}

var _ Strategy = (*Discover)(nil)

// NewDiscover creates the Discover strategy.
//
//nolint:gocritic // config copied once at construction
func NewDiscover(cfg DiscoverConfig) *Discover {
	return &Discover{config: cfg}
}

// Name implements Strategy.
func (d *Discover) Name() StrategyName { return StrategyDiscover }

// Requirements implements Strategy.
func (d *Discover) Requirements() Requirements {
	return Requirements{FollowGraph: true}
}

// CandidateFilter implements Strategy.
func (d *Discover) CandidateFilter(rc *RankingContext) CandidateFilter {
	return CandidateFilter{Status: StatusPublished, Category: rc.Category}
}

// Eligible implements Strategy.
func (d *Discover) Eligible(item *ContentItem, rc *RankingContext) bool {
	return item.IsPublished() && matchesCategory(item, rc)
}

// Normalize implements Strategy.
func (d *Discover) Normalize(items []ContentItem, _ *RankingContext) NormalizationContext {
	return NormalizationContext{
		EngagementScale: engagementScale(items, d.config.Engagement, d.config.EngagementFloor),
		Candidates:      len(items),
	}
}

// Score implements Strategy. Breakdown values for the four weighted
// components are already multiplied by their weight.
func (d *Discover) Score(item *ContentItem, rc *RankingContext, norm *NormalizationContext) ScoredItem {
	w := d.config.Weights
	age := item.Age(rc.Now)

	engagement := w.Engagement * d.engagement(item, norm)
	freshness := w.Freshness * FreshnessCurve(age,
		d.config.FreshnessRamp, d.config.FreshnessPeakEnd, d.config.FreshnessHalfLife, d.config.FreshnessStart)
	diversity := w.Diversity * DiversityBonus(item.AuthorID, rc)
	quality := w.Quality * d.quality(item)
	momentum := d.momentum(item, age)
	location := d.location(item, rc)

	total := engagement + freshness + diversity + quality + momentum + location

	return ScoredItem{
		Item:  *item,
		Score: sanitizeScore(total),
		Breakdown: map[string]float64{
			ComponentEngagement: engagement,
			ComponentFreshness:  freshness,
			ComponentDiversity:  diversity,
			ComponentQuality:    quality,
			ComponentMomentum:   momentum,
			ComponentLocation:   location,
		},
	}
}

// Less implements Strategy.
func (d *Discover) Less(a, b *ScoredItem) bool { return byScoreDesc(a, b) }

// engagement log-normalizes raw weighted engagement into [0,1].
func (d *Discover) engagement(item *ContentItem, norm *NormalizationContext) float64 {
	raw := d.config.Engagement.Apply(item)
	if raw <= 0 {
		return 0
	}
	scale := d.config.EngagementFloor
	if norm != nil && norm.EngagementScale > scale {
		scale = norm.EngagementScale
	}
	return clamp01(math.Log1p(raw) / math.Log1p(scale))
}

func (d *Discover) quality(item *ContentItem) float64 {
	q := d.config.Quality
	var sum float64
	if item.HasImage {
		sum += q.Image
	}
	if item.HasLocation {
		sum += q.Location
	}
	if item.HasReview {
		sum += q.Review
	}
	if item.TextLength > d.config.LongTextThreshold {
		sum += q.LongText
	}
	return clamp01(sum)
}

// momentum compares the trailing-window interaction rate to the lifetime
// rate. An item accelerating MomentumSaturation times faster than its
// lifetime average earns the full cap.
func (d *Discover) momentum(item *ContentItem, age time.Duration) float64 {
	if item.RecentInteractions == nil || *item.RecentInteractions <= 0 {
		return 0
	}
	total := item.Interactions()
	if total <= 0 {
		return 0
	}

	ageHours := math.Max(age.Hours(), 0.1)
	windowHours := math.Min(d.config.MomentumWindow.Hours(), ageHours)

	recentRate := float64(*item.RecentInteractions) / windowHours
	lifetimeRate := total / ageHours
	acceleration := recentRate / lifetimeRate

	return d.config.MomentumCap * clamp01((acceleration-1)/(d.config.MomentumSaturation-1))
}

// location applies only when the request carries a user location.
func (d *Discover) location(item *ContentItem, rc *RankingContext) float64 {
	if rc.UserLocation == nil {
		return 0
	}
	if item.LocationRelevance != nil {
		return d.config.LocationCap * clamp01(*item.LocationRelevance)
	}
	if item.Location == nil {
		return 0
	}
	dist := HaversineKM(*rc.UserLocation, *item.Location)
	return d.config.LocationCap * clamp01(1-dist/d.config.LocationRadiusKM)
}
