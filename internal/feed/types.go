// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"fmt"
	"strings"
	"time"
)

// Status is the publication state of a content item.
type Status string

// Publication states. Only published items are ever ranked.
const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusRemoved   Status = "removed"
)

// StrategyName identifies one of the feed ranking strategies.
type StrategyName string

// Supported strategies.
const (
	StrategyDiscover StrategyName = "discover"
	StrategyPopular  StrategyName = "popular"
	StrategyLatest   StrategyName = "latest"
	StrategySaved    StrategyName = "saved"
)

// String returns the strategy name.
func (s StrategyName) String() string {
	return string(s)
}

// ParseStrategy converts a path or query value into a StrategyName.
func ParseStrategy(s string) (StrategyName, error) {
	name := StrategyName(strings.ToLower(strings.TrimSpace(s)))
	switch name {
	case StrategyDiscover, StrategyPopular, StrategyLatest, StrategySaved:
		return name, nil
	default:
		return "", &RequestError{Field: "strategy", Reason: fmt.Sprintf("unsupported strategy %q", s)}
	}
}

// Timeframe is the Popular feed window.
type Timeframe string

// Supported Popular windows.
const (
	Timeframe24h Timeframe = "24h"
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
)

// Duration returns the window length. The second result is false for
// unsupported values.
func (t Timeframe) Duration() (time.Duration, bool) {
	switch t {
	case Timeframe24h:
		return 24 * time.Hour, true
	case Timeframe7d:
		return 7 * 24 * time.Hour, true
	case Timeframe30d:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// ContentItem is a single post as supplied by the repository. The engine
// treats it as read-only.
type ContentItem struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	Status     Status    `json:"status"`
	Category   string    `json:"category,omitempty"`
	TextLength int       `json:"text_length"`

	HasImage    bool `json:"has_image"`
	HasLocation bool `json:"has_location"`
	HasReview   bool `json:"has_review"`

	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Saves    int `json:"saves"`

	// RecentInteractions counts interactions inside the momentum window.
	// Nil when the source cannot provide it.
	RecentInteractions *int `json:"recent_interactions,omitempty"`

	// LocationRelevance is a precomputed [0,1] relevance to the requester's
	// area. It takes precedence over Location when both are set.
	LocationRelevance *float64 `json:"location_relevance,omitempty"`

	// Location is the point the post is tagged with.
	Location *GeoPoint `json:"location,omitempty"`

	// SavedAt is when the requesting user saved the item. Only set on items
	// returned for a saved-by-user fetch.
	SavedAt *time.Time `json:"saved_at,omitempty"`
}

// Interactions returns the sum of all engagement counters. The sum is taken
// in float64 so very large counters cannot wrap around to a negative total.
func (c *ContentItem) Interactions() float64 {
	return float64(c.Likes) + float64(c.Comments) + float64(c.Shares) + float64(c.Saves)
}

// Age returns how long ago the item was created, never negative.
func (c *ContentItem) Age(now time.Time) time.Duration {
	age := now.Sub(c.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// IsPublished reports whether the item is currently published.
func (c *ContentItem) IsPublished() bool {
	return c.Status == StatusPublished
}

// RankingContext carries everything a strategy may consult about the
// request. It is built once per request and never mutated during scoring.
type RankingContext struct {
	UserID       string
	Now          time.Time
	Followed     map[string]struct{}
	Timeframe    Timeframe
	Category     string
	UserLocation *GeoPoint
}

// Follows reports whether the requester follows the given author.
func (rc *RankingContext) Follows(authorID string) bool {
	if rc.Followed == nil {
		return false
	}
	_, ok := rc.Followed[authorID]
	return ok
}

// Breakdown component keys.
const (
	ComponentEngagement  = "engagement"
	ComponentFreshness   = "freshness"
	ComponentDiversity   = "diversity"
	ComponentQuality     = "quality"
	ComponentMomentum    = "momentum"
	ComponentLocation    = "location"
	ComponentBase        = "base"
	ComponentDecay       = "decay"
	ComponentViral       = "viral"
	ComponentRate        = "interactions_per_hour"
	ComponentRecency     = "recency"
	ComponentSaveRecency = "save_recency"
)

// ScoredItem wraps a content item with its final score, the per-component
// breakdown, and its 1-based position in the full ordering.
type ScoredItem struct {
	Item      ContentItem        `json:"item"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
	Rank      int                `json:"rank"`
}

// Params holds strategy-specific request parameters.
type Params struct {
	// Timeframe is only accepted by the Popular strategy.
	Timeframe Timeframe `json:"timeframe,omitempty" validate:"omitempty,oneof=24h 7d 30d"`

	// Category narrows candidates to a single category.
	Category string `json:"category,omitempty" validate:"omitempty,max=64,slug"`

	// Location biases Discover toward nearby content.
	Location *GeoPoint `json:"location,omitempty" validate:"omitempty"`
}

// Request is a single ranking request.
type Request struct {
	// RequestID is used for log correlation. Generated when empty.
	RequestID string `json:"request_id,omitempty"`

	Strategy StrategyName `json:"strategy" validate:"required,oneof=discover popular latest saved"`

	// UserID is the requester. Empty means anonymous.
	UserID string `json:"user_id,omitempty" validate:"omitempty,max=128"`

	// Page is 1-based. Zero selects page 1.
	Page int `json:"page" validate:"gte=0"`

	// PageSize zero selects the configured default.
	PageSize int `json:"page_size" validate:"gte=0"`

	Params Params `json:"params"`
}

// Diagnostic describes a candidate excluded for being malformed.
type Diagnostic struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// ResponseMetadata contains request accounting.
type ResponseMetadata struct {
	RequestID   string    `json:"request_id"`
	Candidates  int       `json:"candidates"`
	Eligible    int       `json:"eligible"`
	// Truncated reports that the repository held more candidates than one
	// fetch returns, so pages past the fetched window are not reachable.
	Truncated   bool      `json:"truncated,omitempty"`
	LatencyMS   int64     `json:"latency_ms"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Response is one page of a ranked feed.
type Response struct {
	Strategy    StrategyName     `json:"strategy"`
	Items       []ScoredItem     `json:"items"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	HasNextPage bool             `json:"has_next_page"`
	TotalDocs   int              `json:"total_docs"`
	Excluded    int              `json:"excluded"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
	Metadata    ResponseMetadata `json:"metadata"`
}
