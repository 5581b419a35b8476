// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestDiscover_ScoreBounds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	d := NewDiscover(cfg.Discover)
	recent := 500
	relevance := 1.0

	maxed := ContentItem{
		ID: "max", AuthorID: "x", CreatedAt: testNow.Add(-6 * time.Hour), Status: StatusPublished,
		TextLength: 500, HasImage: true, HasLocation: true, HasReview: true,
		Likes: 10000, Comments: 10000, Shares: 10000, Saves: 10000,
		RecentInteractions: &recent, LocationRelevance: &relevance,
	}
	rc := &RankingContext{Now: testNow, UserLocation: &GeoPoint{Lat: 52.5, Lon: 13.4}}
	norm := d.Normalize([]ContentItem{maxed}, rc)

	got := d.Score(&maxed, rc, &norm)
	if got.Score < 0 || got.Score > 1.2+epsilon {
		t.Errorf("Score = %v, want within [0, 1.2]", got.Score)
	}

	caps := map[string]float64{
		ComponentEngagement: cfg.Discover.Weights.Engagement,
		ComponentFreshness:  cfg.Discover.Weights.Freshness,
		ComponentDiversity:  cfg.Discover.Weights.Diversity,
		ComponentQuality:    cfg.Discover.Weights.Quality,
		ComponentMomentum:   cfg.Discover.MomentumCap,
		ComponentLocation:   cfg.Discover.LocationCap,
	}
	var sum float64
	for key, limit := range caps {
		v, ok := got.Breakdown[key]
		if !ok {
			t.Errorf("breakdown missing %q", key)
			continue
		}
		if v < 0 || v > limit+epsilon {
			t.Errorf("%s = %v, want within [0, %v]", key, v, limit)
		}
		sum += v
	}
	if !approxEqual(sum, got.Score) {
		t.Errorf("breakdown sum = %v, score = %v", sum, got.Score)
	}
	if !approxEqual(got.Breakdown[ComponentLocation], cfg.Discover.LocationCap) {
		t.Errorf("location = %v, want cap", got.Breakdown[ComponentLocation])
	}
}

func TestDiscover_EngagementNormalization(t *testing.T) {
	t.Parallel()

	d := NewDiscover(DefaultConfig().Discover)
	rc := &RankingContext{Now: testNow}

	quiet := post("quiet", 3*time.Hour, 1)
	busy := post("busy", 3*time.Hour, 1000)
	items := []ContentItem{quiet, busy}
	norm := d.Normalize(items, rc)

	if norm.EngagementScale != 3000 {
		t.Errorf("EngagementScale = %v, want 3000", norm.EngagementScale)
	}
	q := d.Score(&items[0], rc, &norm)
	b := d.Score(&items[1], rc, &norm)
	if !approxEqual(b.Breakdown[ComponentEngagement], 0.40) {
		t.Errorf("busy engagement = %v, want full weight", b.Breakdown[ComponentEngagement])
	}
	if q.Breakdown[ComponentEngagement] >= b.Breakdown[ComponentEngagement] {
		t.Error("quiet item should have lower engagement")
	}

	// A small corpus is measured against the floor, not its own max.
	small := []ContentItem{post("s", time.Hour, 2)}
	norm = d.Normalize(small, rc)
	if norm.EngagementScale != 100 {
		t.Errorf("EngagementScale = %v, want floor 100", norm.EngagementScale)
	}
}

func TestDiscover_Freshness(t *testing.T) {
	t.Parallel()

	d := NewDiscover(DefaultConfig().Discover)
	rc := &RankingContext{Now: testNow}
	norm := NormalizationContext{EngagementScale: 100}

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"brand new", 0, 0.5 * 0.25},
		{"one hour", time.Hour, 0.75 * 0.25},
		{"peak start", 2 * time.Hour, 0.25},
		{"peak end", 24 * time.Hour, 0.25},
		{"one half-life past peak", 48 * time.Hour, 0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item := post("x", tt.age, 0)
			got := d.Score(&item, rc, &norm).Breakdown[ComponentFreshness]
			if !approxEqual(got, tt.want) {
				t.Errorf("freshness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscover_Quality(t *testing.T) {
	t.Parallel()

	d := NewDiscover(DefaultConfig().Discover)
	rc := &RankingContext{Now: testNow}
	norm := NormalizationContext{EngagementScale: 100}

	tests := []struct {
		name string
		mod  func(*ContentItem)
		want float64
	}{
		{"bare short post", func(c *ContentItem) { c.TextLength = 20 }, 0},
		{"long text only", func(c *ContentItem) { c.TextLength = 101 }, 0.20},
		{"exactly threshold", func(c *ContentItem) { c.TextLength = 100 }, 0},
		{"image and review", func(c *ContentItem) { c.TextLength = 0; c.HasImage = true; c.HasReview = true }, 0.55},
		{"everything", func(c *ContentItem) {
			c.TextLength = 400
			c.HasImage = true
			c.HasLocation = true
			c.HasReview = true
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item := post("x", time.Hour, 0)
			tt.mod(&item)
			got := d.Score(&item, rc, &norm).Breakdown[ComponentQuality]
			if !approxEqual(got, 0.15*tt.want) {
				t.Errorf("quality = %v, want %v", got, 0.15*tt.want)
			}
		})
	}
}

func TestDiscover_Momentum(t *testing.T) {
	t.Parallel()

	d := NewDiscover(DefaultConfig().Discover)
	rc := &RankingContext{Now: testNow}
	norm := NormalizationContext{EngagementScale: 100}

	intp := func(v int) *int { return &v }

	tests := []struct {
		name   string
		age    time.Duration
		likes  int
		recent *int
		want   float64
	}{
		{"no signal", 48 * time.Hour, 100, nil, 0},
		{"steady rate", 48 * time.Hour, 96, intp(12), 0},
		{"saturated", 48 * time.Hour, 96, intp(96), 0.10},
		{"half way", 48 * time.Hour, 96, intp(30), 0.05},
		{"young item", 3 * time.Hour, 30, intp(30), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item := post("x", tt.age, tt.likes)
			item.RecentInteractions = tt.recent
			got := d.Score(&item, rc, &norm).Breakdown[ComponentMomentum]
			if !approxEqual(got, tt.want) {
				t.Errorf("momentum = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscover_Location(t *testing.T) {
	t.Parallel()

	d := NewDiscover(DefaultConfig().Discover)
	norm := NormalizationContext{EngagementScale: 100}
	berlin := GeoPoint{Lat: 52.52, Lon: 13.405}

	near := post("near", time.Hour, 0)
	near.Location = &GeoPoint{Lat: 52.52, Lon: 13.405}
	far := post("far", time.Hour, 0)
	far.Location = &GeoPoint{Lat: 48.137, Lon: 11.575}

	t.Run("no user location", func(t *testing.T) {
		t.Parallel()
		rc := &RankingContext{Now: testNow}
		if got := d.Score(&near, rc, &norm).Breakdown[ComponentLocation]; got != 0 {
			t.Errorf("location = %v, want 0", got)
		}
	})

	t.Run("distance falloff", func(t *testing.T) {
		t.Parallel()
		rc := &RankingContext{Now: testNow, UserLocation: &berlin}
		if got := d.Score(&near, rc, &norm).Breakdown[ComponentLocation]; !approxEqual(got, 0.10) {
			t.Errorf("near location = %v, want 0.10", got)
		}
		if got := d.Score(&far, rc, &norm).Breakdown[ComponentLocation]; got != 0 {
			t.Errorf("far location = %v, want 0", got)
		}
	})

	t.Run("precomputed relevance wins", func(t *testing.T) {
		t.Parallel()
		rc := &RankingContext{Now: testNow, UserLocation: &berlin}
		item := far
		rel := 0.5
		item.LocationRelevance = &rel
		if got := d.Score(&item, rc, &norm).Breakdown[ComponentLocation]; !approxEqual(got, 0.05) {
			t.Errorf("location = %v, want 0.05", got)
		}
	})
}

func TestPopular_ViralThresholdIsStrict(t *testing.T) {
	t.Parallel()

	p := NewPopular(DefaultConfig().Popular)
	rc := &RankingContext{Now: testNow, Timeframe: Timeframe24h}

	atThreshold := post("ten", time.Hour, 10)
	aboveThreshold := post("eleven", time.Hour, 11)

	ten := p.Score(&atThreshold, rc, nil)
	eleven := p.Score(&aboveThreshold, rc, nil)

	if ten.Breakdown[ComponentViral] != 1 {
		t.Errorf("10/h viral multiplier = %v, want 1", ten.Breakdown[ComponentViral])
	}
	if eleven.Breakdown[ComponentViral] != 1.5 {
		t.Errorf("11/h viral multiplier = %v, want 1.5", eleven.Breakdown[ComponentViral])
	}

	decay := ExponentialDecay(time.Hour, 48*time.Hour)
	if !approxEqual(ten.Score, 10*decay) {
		t.Errorf("10/h score = %v, want %v", ten.Score, 10*decay)
	}
	if !approxEqual(eleven.Score, 11*decay*1.5) {
		t.Errorf("11/h score = %v, want %v", eleven.Score, 11*decay*1.5)
	}
}

func TestInteractions_LargeCountersDoNotWrap(t *testing.T) {
	t.Parallel()

	item := post("huge", 30*time.Hour, math.MaxInt)
	item.Comments = math.MaxInt
	item.Shares = math.MaxInt
	item.Saves = math.MaxInt

	if got := item.Interactions(); got <= 0 {
		t.Fatalf("Interactions() = %v, want positive", got)
	}

	p := NewPopular(DefaultConfig().Popular)
	scored := p.Score(&item, &RankingContext{Now: testNow, Timeframe: Timeframe7d}, nil)
	if scored.Breakdown[ComponentViral] != 1.5 {
		t.Errorf("viral multiplier = %v, want 1.5", scored.Breakdown[ComponentViral])
	}
	if scored.Score <= 0 {
		t.Errorf("Score = %v, want positive", scored.Score)
	}

	l := NewLatest(DefaultConfig().Latest)
	if !l.Eligible(&item, &RankingContext{Now: testNow}) {
		t.Error("Latest excluded an old item with maximal engagement")
	}
}

func TestPopular_WeightsAndDecay(t *testing.T) {
	t.Parallel()

	p := NewPopular(DefaultConfig().Popular)
	rc := &RankingContext{Now: testNow, Timeframe: Timeframe7d}

	item := ContentItem{
		ID: "x", CreatedAt: testNow.Add(-48 * time.Hour), Status: StatusPublished,
		Likes: 10, Comments: 2, Shares: 1, Saves: 4,
	}
	got := p.Score(&item, rc, nil)

	wantBase := 10*1.0 + 2*3.0 + 1*5.0 + 4*2.5
	if got.Breakdown[ComponentBase] != wantBase {
		t.Errorf("base = %v, want %v", got.Breakdown[ComponentBase], wantBase)
	}
	if !approxEqual(got.Breakdown[ComponentDecay], 0.5) {
		t.Errorf("decay at one half-life = %v, want 0.5", got.Breakdown[ComponentDecay])
	}
	if !approxEqual(got.Score, wantBase*0.5) {
		t.Errorf("score = %v, want %v", got.Score, wantBase*0.5)
	}
}

func TestPopular_MinAgeClamp(t *testing.T) {
	t.Parallel()

	p := NewPopular(DefaultConfig().Popular)
	rc := &RankingContext{Now: testNow}

	// Age is clamped to 6m, so 2 interactions at 5s rate as 20/h, not 1440/h.
	item := post("new", 5*time.Second, 2)
	got := p.Score(&item, rc, nil)
	if got.Breakdown[ComponentViral] != 1.5 {
		t.Errorf("viral = %v, want 1.5 at 20/h", got.Breakdown[ComponentViral])
	}
	if !approxEqual(got.Breakdown[ComponentRate], 20) {
		t.Errorf("rate = %v, want 20", got.Breakdown[ComponentRate])
	}

	zero := post("zero", 0, 0)
	if s := p.Score(&zero, rc, nil); s.Score != 0 || math.IsNaN(s.Breakdown[ComponentRate]) {
		t.Errorf("zero item score = %v rate = %v", s.Score, s.Breakdown[ComponentRate])
	}
}

func TestPopular_TimeframeWindow(t *testing.T) {
	t.Parallel()

	p := NewPopular(DefaultConfig().Popular)

	tests := []struct {
		name      string
		timeframe Timeframe
		age       time.Duration
		want      bool
	}{
		{"inside 24h", Timeframe24h, 23 * time.Hour, true},
		{"outside 24h", Timeframe24h, 25 * time.Hour, false},
		{"inside 7d", Timeframe7d, 6 * 24 * time.Hour, true},
		{"outside 7d", Timeframe7d, 8 * 24 * time.Hour, false},
		{"inside 30d", Timeframe30d, 29 * 24 * time.Hour, true},
		{"default is 7d", "", 8 * 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rc := &RankingContext{Now: testNow, Timeframe: tt.timeframe}
			item := post("x", tt.age, 1)
			if got := p.Eligible(&item, rc); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}

	rc := &RankingContext{Now: testNow, Timeframe: Timeframe24h}
	if since := p.CandidateFilter(rc).Since; !since.Equal(testNow.Add(-24 * time.Hour)) {
		t.Errorf("CandidateFilter.Since = %v", since)
	}
}

func TestLatest_Gate(t *testing.T) {
	t.Parallel()

	l := NewLatest(DefaultConfig().Latest)
	rc := &RankingContext{Now: testNow}

	tests := []struct {
		name   string
		length int
		likes  int
		age    time.Duration
		status Status
		want   bool
	}{
		{"long and recent", 50, 0, time.Hour, StatusPublished, true},
		{"exactly ten chars", 10, 5, time.Hour, StatusPublished, false},
		{"eleven chars", 11, 0, time.Hour, StatusPublished, true},
		{"old with interaction", 50, 1, 72 * time.Hour, StatusPublished, true},
		{"old without interaction", 50, 0, 72 * time.Hour, StatusPublished, false},
		{"draft", 50, 5, time.Hour, StatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item := post("x", tt.age, tt.likes)
			item.TextLength = tt.length
			item.Status = tt.status
			if got := l.Eligible(&item, rc); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLatest_ScoreMonotoneWithAge(t *testing.T) {
	t.Parallel()

	l := NewLatest(DefaultConfig().Latest)
	rc := &RankingContext{Now: testNow}

	prev := math.Inf(1)
	for _, h := range []int{0, 1, 5, 24, 200} {
		item := post("x", time.Duration(h)*time.Hour, 1)
		s := l.Score(&item, rc, nil).Score
		if s > 1 || s <= 0 || s >= prev {
			t.Errorf("age %dh score = %v, previous %v", h, s, prev)
		}
		prev = s
	}
}

func TestSaved_EligibleAndScore(t *testing.T) {
	t.Parallel()

	s := NewSaved()
	rc := &RankingContext{Now: testNow, UserID: "u1"}

	savedAt := testNow.Add(-3 * time.Hour)
	item := post("x", 100*time.Hour, 0)
	item.SavedAt = &savedAt

	if !s.Eligible(&item, rc) {
		t.Error("published saved item should be eligible")
	}
	if got := s.Score(&item, rc, nil).Score; !approxEqual(got, 0.25) {
		t.Errorf("score = %v, want 0.25", got)
	}

	removed := item
	removed.Status = StatusRemoved
	if s.Eligible(&removed, rc) {
		t.Error("removed item should not be eligible")
	}

	unsaved := post("y", time.Hour, 0)
	if s.Eligible(&unsaved, rc) {
		t.Error("item without SavedAt should not be eligible")
	}

	f := s.CandidateFilter(rc)
	if f.SavedByUser != "u1" || f.Status != "" {
		t.Errorf("CandidateFilter() = %+v", f)
	}
}

func TestCategoryFilter(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	rc := &RankingContext{Now: testNow, Category: "coffee", UserID: "u1"}
	savedAt := testNow

	match := post("m", time.Hour, 1)
	match.Category = "coffee"
	match.SavedAt = &savedAt
	other := post("o", time.Hour, 1)
	other.Category = "bars"
	other.SavedAt = &savedAt

	for name, s := range NewStrategies(cfg) {
		if !s.Eligible(&match, rc) {
			t.Errorf("%s: matching category excluded", name)
		}
		if s.Eligible(&other, rc) {
			t.Errorf("%s: other category included", name)
		}
		if s.CandidateFilter(rc).Category != "coffee" {
			t.Errorf("%s: category not pushed down", name)
		}
	}
}
