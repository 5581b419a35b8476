// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"math"
	"time"
)

// earthRadiusKm is the mean Earth radius used by HaversineKM.
const earthRadiusKm = 6371.0

// ExponentialDecay returns 0.5^(age/halfLife). Non-positive ages yield 1.
func ExponentialDecay(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	if halfLife <= 0 {
		return 0
	}
	return math.Pow(0.5, age.Hours()/halfLife.Hours())
}

// FreshnessCurve is the Discover freshness sweet spot. It ramps linearly
// from start to 1 over [0, ramp), holds 1 through peakEnd, then decays
// with the given half-life.
func FreshnessCurve(age, ramp, peakEnd, halfLife time.Duration, start float64) float64 {
	if age < 0 {
		age = 0
	}
	switch {
	case age < ramp:
		return start + (1-start)*(age.Hours()/ramp.Hours())
	case age <= peakEnd:
		return 1
	default:
		return ExponentialDecay(age-peakEnd, halfLife)
	}
}

// DiversityBonus returns 1 when the author is someone the requester does
// not follow and is not the requester, otherwise 0.
func DiversityBonus(authorID string, rc *RankingContext) float64 {
	if rc.UserID != "" && authorID == rc.UserID {
		return 0
	}
	if rc.Follows(authorID) {
		return 0
	}
	return 1
}

// HaversineKM returns the great-circle distance between two points.
func HaversineKM(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// sanitizeScore forces a score to be finite and non-negative.
func sanitizeScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
