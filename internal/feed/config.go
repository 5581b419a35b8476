// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"fmt"
	"math"
	"time"
)

// Config contains every tunable constant used by the ranking strategies.
type Config struct {
	// Discover contains parameters for the personalized Discover feed.
	Discover DiscoverConfig `json:"discover" koanf:"discover"`

	// Popular contains parameters for the timeframe-bounded Popular feed.
	Popular PopularConfig `json:"popular" koanf:"popular"`

	// Latest contains the hard inclusion gate for the Latest feed.
	Latest LatestConfig `json:"latest" koanf:"latest"`

	// Pagination contains page size bounds.
	Pagination PaginationConfig `json:"pagination" koanf:"pagination"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// InteractionWeights multiplies each engagement counter.
type InteractionWeights struct {
	Likes    float64 `json:"likes" koanf:"likes"`
	Comments float64 `json:"comments" koanf:"comments"`
	Shares   float64 `json:"shares" koanf:"shares"`
	Saves    float64 `json:"saves" koanf:"saves"`
}

// Apply returns the weighted sum of the item's counters.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w InteractionWeights) Apply(item *ContentItem) float64 {
	return float64(item.Likes)*w.Likes +
		float64(item.Comments)*w.Comments +
		float64(item.Shares)*w.Shares +
		float64(item.Saves)*w.Saves
}

// DiscoverWeights are the component weights of the Discover base score.
type DiscoverWeights struct {
	Engagement float64 `json:"engagement" koanf:"engagement"`
	Freshness  float64 `json:"freshness" koanf:"freshness"`
	Diversity  float64 `json:"diversity" koanf:"diversity"`
	Quality    float64 `json:"quality" koanf:"quality"`
}

// QualityWeights are the fixed contributions of each quality signal.
// They should sum to 1.0 so the quality component stays in [0,1].
type QualityWeights struct {
	Image    float64 `json:"image" koanf:"image"`
	Location float64 `json:"location" koanf:"location"`
	Review   float64 `json:"review" koanf:"review"`
	LongText float64 `json:"long_text" koanf:"long_text"`
}

// DiscoverConfig contains parameters for the Discover strategy.
type DiscoverConfig struct {
	Weights DiscoverWeights `json:"weights" koanf:"weights"`

	// Engagement is the counter weighting of the raw engagement value.
	Engagement InteractionWeights `json:"engagement" koanf:"engagement"`

	// EngagementFloor is the minimum reference scale for log normalization.
	// It keeps a tiny corpus from inflating weak engagement to 1.0.
	// Default: 100.
	EngagementFloor float64 `json:"engagement_floor" koanf:"engagement_floor"`

	// FreshnessRamp is the age at which freshness reaches its peak.
	// Default: 2h.
	FreshnessRamp time.Duration `json:"freshness_ramp" koanf:"freshness_ramp"`

	// FreshnessPeakEnd is the age after which freshness starts to decay.
	// Default: 24h.
	FreshnessPeakEnd time.Duration `json:"freshness_peak_end" koanf:"freshness_peak_end"`

	// FreshnessStart is the freshness of a brand-new item, in [0,1].
	// Default: 0.5.
	FreshnessStart float64 `json:"freshness_start" koanf:"freshness_start"`

	// FreshnessHalfLife governs decay past the peak.
	// Default: 24h.
	FreshnessHalfLife time.Duration `json:"freshness_half_life" koanf:"freshness_half_life"`

	Quality QualityWeights `json:"quality" koanf:"quality"`

	// LongTextThreshold is the text length, in characters, above which
	// the long-text quality signal applies. Default: 100.
	LongTextThreshold int `json:"long_text_threshold" koanf:"long_text_threshold"`

	// MomentumWindow is the trailing window RecentInteractions covers.
	// Default: 6h.
	MomentumWindow time.Duration `json:"momentum_window" koanf:"momentum_window"`

	// MomentumSaturation is the recent-to-lifetime rate ratio at which the
	// momentum bonus reaches its cap. Must be > 1. Default: 4.
	MomentumSaturation float64 `json:"momentum_saturation" koanf:"momentum_saturation"`

	// MomentumCap bounds the additive momentum bonus. Default: 0.10.
	MomentumCap float64 `json:"momentum_cap" koanf:"momentum_cap"`

	// LocationCap bounds the additive location bonus. Default: 0.10.
	LocationCap float64 `json:"location_cap" koanf:"location_cap"`

	// LocationRadiusKM is the distance at which the location bonus reaches
	// zero when only coordinates are known. Default: 25.
	LocationRadiusKM float64 `json:"location_radius_km" koanf:"location_radius_km"`
}

// PopularConfig contains parameters for the Popular strategy.
type PopularConfig struct {
	Weights InteractionWeights `json:"weights" koanf:"weights"`

	// HalfLife is the exponential decay half-life from creation.
	// Default: 48h.
	HalfLife time.Duration `json:"half_life" koanf:"half_life"`

	// ViralThreshold is the interactions-per-hour rate that must be strictly
	// exceeded for the viral multiplier. Default: 10.
	ViralThreshold float64 `json:"viral_threshold" koanf:"viral_threshold"`

	// ViralMultiplier is applied to viral items. Default: 1.5.
	ViralMultiplier float64 `json:"viral_multiplier" koanf:"viral_multiplier"`

	// MinAge is the smallest age used in rate and decay math.
	// Default: 6m (0.1h).
	MinAge time.Duration `json:"min_age" koanf:"min_age"`

	// DefaultTimeframe applies when the request names none.
	// Default: 7d.
	DefaultTimeframe Timeframe `json:"default_timeframe" koanf:"default_timeframe"`
}

// LatestConfig contains the Latest strategy inclusion gate.
type LatestConfig struct {
	// MinTextLength must be strictly exceeded. Default: 10.
	MinTextLength int `json:"min_text_length" koanf:"min_text_length"`

	// MinInteractions of likes plus comments admits older items.
	// Default: 1.
	MinInteractions int `json:"min_interactions" koanf:"min_interactions"`

	// RecencyGate admits items younger than this regardless of activity.
	// Default: 24h.
	RecencyGate time.Duration `json:"recency_gate" koanf:"recency_gate"`
}

// PaginationConfig contains page size bounds.
type PaginationConfig struct {
	DefaultPageSize int `json:"default_page_size" koanf:"default_page_size"`
	MaxPageSize     int `json:"max_page_size" koanf:"max_page_size"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates caps a repository fetch for strategies whose fetch
	// order matches their sort key (Latest, Saved). Score-ranked strategies
	// fetch uncapped. Default: 5000.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// FetchTimeout bounds the repository and follow-graph calls.
	// Default: 3s.
	FetchTimeout time.Duration `json:"fetch_timeout" koanf:"fetch_timeout"`

	// ParallelThreshold is the eligible-candidate count at which scoring
	// fans out across goroutines. Zero disables parallel scoring.
	// Default: 1024.
	ParallelThreshold int `json:"parallel_threshold" koanf:"parallel_threshold"`

	// ScoringWorkers is the goroutine count for parallel scoring.
	// Zero uses runtime.NumCPU(). Default: 0.
	ScoringWorkers int `json:"scoring_workers" koanf:"scoring_workers"`
}

// DefaultConfig returns the product-tuned defaults.
func DefaultConfig() *Config {
	return &Config{
		Discover: DiscoverConfig{
			Weights: DiscoverWeights{
				Engagement: 0.40,
				Freshness:  0.25,
				Diversity:  0.20,
				Quality:    0.15,
			},
			Engagement: InteractionWeights{
				Likes:    3,
				Comments: 5,
				Shares:   7,
				Saves:    4,
			},
			EngagementFloor:   100,
			FreshnessRamp:     2 * time.Hour,
			FreshnessPeakEnd:  24 * time.Hour,
			FreshnessStart:    0.5,
			FreshnessHalfLife: 24 * time.Hour,
			Quality: QualityWeights{
				Image:    0.30,
				Location: 0.25,
				Review:   0.25,
				LongText: 0.20,
			},
			LongTextThreshold:  100,
			MomentumWindow:     6 * time.Hour,
			MomentumSaturation: 4,
			MomentumCap:        0.10,
			LocationCap:        0.10,
			LocationRadiusKM:   25,
		},
		Popular: PopularConfig{
			Weights: InteractionWeights{
				Likes:    1.0,
				Comments: 3.0,
				Shares:   5.0,
				Saves:    2.5,
			},
			HalfLife:         48 * time.Hour,
			ViralThreshold:   10,
			ViralMultiplier:  1.5,
			MinAge:           6 * time.Minute,
			DefaultTimeframe: Timeframe7d,
		},
		Latest: LatestConfig{
			MinTextLength:   10,
			MinInteractions: 1,
			RecencyGate:     24 * time.Hour,
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Limits: LimitsConfig{
			MaxCandidates:     5000,
			FetchTimeout:      3 * time.Second,
			ParallelThreshold: 1024,
			ScoringWorkers:    0,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.validateDiscover(); err != nil {
		return err
	}
	if err := c.validatePopular(); err != nil {
		return err
	}
	if err := c.validateLatest(); err != nil {
		return err
	}
	return c.validateLimits()
}

func (c *Config) validateDiscover() error {
	d := &c.Discover
	weights := []namedValue{
		{"discover.weights.engagement", d.Weights.Engagement},
		{"discover.weights.freshness", d.Weights.Freshness},
		{"discover.weights.diversity", d.Weights.Diversity},
		{"discover.weights.quality", d.Weights.Quality},
		{"discover.quality.image", d.Quality.Image},
		{"discover.quality.location", d.Quality.Location},
		{"discover.quality.review", d.Quality.Review},
		{"discover.quality.long_text", d.Quality.LongText},
		{"discover.freshness_start", d.FreshnessStart},
		{"discover.momentum_cap", d.MomentumCap},
		{"discover.location_cap", d.LocationCap},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", w.name, w.value)
		}
	}
	if err := validateInteractionWeights("discover.engagement", d.Engagement); err != nil {
		return err
	}
	if d.EngagementFloor < 1 {
		return fmt.Errorf("discover.engagement_floor must be at least 1, got %f", d.EngagementFloor)
	}
	if d.FreshnessRamp <= 0 {
		return fmt.Errorf("discover.freshness_ramp must be positive, got %v", d.FreshnessRamp)
	}
	if d.FreshnessPeakEnd < d.FreshnessRamp {
		return fmt.Errorf("discover.freshness_peak_end must not precede freshness_ramp, got %v < %v",
			d.FreshnessPeakEnd, d.FreshnessRamp)
	}
	if d.FreshnessHalfLife <= 0 {
		return fmt.Errorf("discover.freshness_half_life must be positive, got %v", d.FreshnessHalfLife)
	}
	if d.LongTextThreshold < 0 {
		return fmt.Errorf("discover.long_text_threshold must be non-negative, got %d", d.LongTextThreshold)
	}
	if d.MomentumWindow <= 0 {
		return fmt.Errorf("discover.momentum_window must be positive, got %v", d.MomentumWindow)
	}
	if d.MomentumSaturation <= 1 {
		return fmt.Errorf("discover.momentum_saturation must be greater than 1, got %f", d.MomentumSaturation)
	}
	if d.LocationRadiusKM <= 0 {
		return fmt.Errorf("discover.location_radius_km must be positive, got %f", d.LocationRadiusKM)
	}
	return nil
}

func (c *Config) validatePopular() error {
	p := &c.Popular
	if err := validateInteractionWeights("popular.weights", p.Weights); err != nil {
		return err
	}
	if p.HalfLife <= 0 {
		return fmt.Errorf("popular.half_life must be positive, got %v", p.HalfLife)
	}
	if p.ViralThreshold < 0 {
		return fmt.Errorf("popular.viral_threshold must be non-negative, got %f", p.ViralThreshold)
	}
	if p.ViralMultiplier < 1 {
		return fmt.Errorf("popular.viral_multiplier must be at least 1, got %f", p.ViralMultiplier)
	}
	if p.MinAge <= 0 {
		return fmt.Errorf("popular.min_age must be positive, got %v", p.MinAge)
	}
	if _, ok := p.DefaultTimeframe.Duration(); !ok {
		return fmt.Errorf("popular.default_timeframe must be one of 24h, 7d, 30d, got %q", p.DefaultTimeframe)
	}
	return nil
}

func (c *Config) validateLatest() error {
	if c.Latest.MinTextLength < 0 {
		return fmt.Errorf("latest.min_text_length must be non-negative, got %d", c.Latest.MinTextLength)
	}
	if c.Latest.MinInteractions < 0 {
		return fmt.Errorf("latest.min_interactions must be non-negative, got %d", c.Latest.MinInteractions)
	}
	if c.Latest.RecencyGate < 0 {
		return fmt.Errorf("latest.recency_gate must be non-negative, got %v", c.Latest.RecencyGate)
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Pagination.MaxPageSize < 1 {
		return fmt.Errorf("pagination.max_page_size must be positive, got %d", c.Pagination.MaxPageSize)
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size must be in [1, %d], got %d",
			c.Pagination.MaxPageSize, c.Pagination.DefaultPageSize)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.FetchTimeout <= 0 {
		return fmt.Errorf("limits.fetch_timeout must be positive, got %v", c.Limits.FetchTimeout)
	}
	if c.Limits.ParallelThreshold < 0 {
		return fmt.Errorf("limits.parallel_threshold must be non-negative, got %d", c.Limits.ParallelThreshold)
	}
	if c.Limits.ScoringWorkers < 0 {
		return fmt.Errorf("limits.scoring_workers must be non-negative, got %d", c.Limits.ScoringWorkers)
	}
	return nil
}

//nolint:gocritic // value param keeps call sites terse
func validateInteractionWeights(prefix string, w InteractionWeights) error {
	for _, v := range []namedValue{
		{"likes", w.Likes},
		{"comments", w.Comments},
		{"shares", w.Shares},
		{"saves", w.Saves},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || v.value < 0 {
			return fmt.Errorf("%s.%s must be a non-negative number, got %f", prefix, v.name, v.value)
		}
	}
	return nil
}

// namedValue keeps validation order, and so the reported field, stable.
type namedValue struct {
	name  string
	value float64
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	return &Config{
		Discover:   c.Discover,
		Popular:    c.Popular,
		Latest:     c.Latest,
		Pagination: c.Pagination,
		Limits:     c.Limits,
	}
}
