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

func TestExponentialDecay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		age      time.Duration
		halfLife time.Duration
		want     float64
	}{
		{"zero age", 0, 48 * time.Hour, 1},
		{"negative age", -time.Hour, 48 * time.Hour, 1},
		{"one half-life", 48 * time.Hour, 48 * time.Hour, 0.5},
		{"two half-lives", 96 * time.Hour, 48 * time.Hour, 0.25},
		{"zero half-life", time.Hour, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExponentialDecay(tt.age, tt.halfLife); !approxEqual(got, tt.want) {
				t.Errorf("ExponentialDecay(%v, %v) = %v, want %v", tt.age, tt.halfLife, got, tt.want)
			}
		})
	}
}

func TestFreshnessCurve_Bounds(t *testing.T) {
	t.Parallel()

	for h := 0; h <= 24*30; h++ {
		v := FreshnessCurve(time.Duration(h)*time.Hour, 2*time.Hour, 24*time.Hour, 24*time.Hour, 0.5)
		if v < 0 || v > 1 || math.IsNaN(v) {
			t.Fatalf("FreshnessCurve at %dh = %v, want within [0, 1]", h, v)
		}
	}
}

func TestDiversityBonus(t *testing.T) {
	t.Parallel()

	rc := &RankingContext{UserID: "me", Followed: map[string]struct{}{"friend": {}}}

	tests := []struct {
		author string
		want   float64
	}{
		{"stranger", 1},
		{"friend", 0},
		{"me", 0},
	}
	for _, tt := range tests {
		if got := DiversityBonus(tt.author, rc); got != tt.want {
			t.Errorf("DiversityBonus(%q) = %v, want %v", tt.author, got, tt.want)
		}
	}

	anon := &RankingContext{}
	if got := DiversityBonus("anyone", anon); got != 1 {
		t.Errorf("anonymous DiversityBonus = %v, want 1", got)
	}
}

func TestHaversineKM(t *testing.T) {
	t.Parallel()

	berlin := GeoPoint{Lat: 52.5200, Lon: 13.4050}
	munich := GeoPoint{Lat: 48.1374, Lon: 11.5755}

	if d := HaversineKM(berlin, berlin); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
	d := HaversineKM(berlin, munich)
	if d < 500 || d > 510 {
		t.Errorf("Berlin-Munich = %v km, want about 504", d)
	}
	if back := HaversineKM(munich, berlin); !approxEqual(d, back) {
		t.Errorf("distance not symmetric: %v vs %v", d, back)
	}
}

func TestSanitizeScore(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5} {
		if got := sanitizeScore(v); got != 0 {
			t.Errorf("sanitizeScore(%v) = %v, want 0", v, got)
		}
	}
	if got := sanitizeScore(0.7); got != 0.7 {
		t.Errorf("sanitizeScore(0.7) = %v", got)
	}
}
