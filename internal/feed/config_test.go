// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative discover weight", func(c *Config) { c.Discover.Weights.Freshness = -0.1 }, "discover.weights.freshness"},
		{"NaN quality weight", func(c *Config) { c.Discover.Quality.Image = math.NaN() }, "discover.quality.image"},
		{"negative engagement weight", func(c *Config) { c.Discover.Engagement.Shares = -1 }, "discover.engagement.shares"},
		{"engagement floor", func(c *Config) { c.Discover.EngagementFloor = 0 }, "discover.engagement_floor"},
		{"peak before ramp", func(c *Config) { c.Discover.FreshnessPeakEnd = time.Hour }, "discover.freshness_peak_end"},
		{"saturation", func(c *Config) { c.Discover.MomentumSaturation = 1 }, "discover.momentum_saturation"},
		{"location radius", func(c *Config) { c.Discover.LocationRadiusKM = 0 }, "discover.location_radius_km"},
		{"popular half-life", func(c *Config) { c.Popular.HalfLife = 0 }, "popular.half_life"},
		{"viral multiplier", func(c *Config) { c.Popular.ViralMultiplier = 0.5 }, "popular.viral_multiplier"},
		{"min age", func(c *Config) { c.Popular.MinAge = 0 }, "popular.min_age"},
		{"default timeframe", func(c *Config) { c.Popular.DefaultTimeframe = "1y" }, "popular.default_timeframe"},
		{"latest text length", func(c *Config) { c.Latest.MinTextLength = -1 }, "latest.min_text_length"},
		{"default page size above max", func(c *Config) { c.Pagination.DefaultPageSize = 101 }, "pagination.default_page_size"},
		{"max candidates", func(c *Config) { c.Limits.MaxCandidates = 0 }, "limits.max_candidates"},
		{"fetch timeout", func(c *Config) { c.Limits.FetchTimeout = 0 }, "limits.fetch_timeout"},
		{"workers", func(c *Config) { c.Limits.ScoringWorkers = -1 }, "limits.scoring_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_StableFieldOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "discover weights",
			mutate: func(c *Config) {
				c.Discover.LocationCap = 2
				c.Discover.Quality.Review = -1
				c.Discover.Weights.Engagement = 2
			},
			wantErr: "discover.weights.engagement",
		},
		{
			name: "interaction weights",
			mutate: func(c *Config) {
				c.Discover.Engagement.Saves = -1
				c.Discover.Engagement.Likes = -1
			},
			wantErr: "discover.engagement.likes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// Repeated so an unordered walk over the fields shows up.
			for i := 0; i < 50; i++ {
				cfg := DefaultConfig()
				tt.mutate(cfg)
				err := cfg.Validate()
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantErr+" ") {
					t.Fatalf("run %d: Validate() error = %v, want %s first", i, err, tt.wantErr)
				}
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	orig := DefaultConfig()
	clone := orig.Clone()
	clone.Popular.HalfLife = time.Hour
	clone.Discover.Weights.Engagement = 0.9

	if orig.Popular.HalfLife != 48*time.Hour {
		t.Error("Clone shares Popular with original")
	}
	if orig.Discover.Weights.Engagement != 0.40 {
		t.Error("Clone shares Discover weights with original")
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    StrategyName
		wantErr bool
	}{
		{"discover", StrategyDiscover, false},
		{" Popular ", StrategyPopular, false},
		{"LATEST", StrategyLatest, false},
		{"saved", StrategySaved, false},
		{"trending", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
