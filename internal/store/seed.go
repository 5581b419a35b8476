// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/nearby/internal/feed"
)

// DemoUserID is the requester whose saves and follows Seed creates.
const DemoUserID = "demo-user"

var demoCategories = []string{"coffee", "food", "bars", "parks", "markets", "museums"}

// demoCenter is the point demo locations scatter around.
var demoCenter = feed.GeoPoint{Lat: 52.5200, Lon: 13.4050}

// SeedStats reports what Seed wrote.
type SeedStats struct {
	Items   int
	Saves   int
	Follows int
}

// Seed writes a deterministic demo corpus of n items relative to now. The
// same n and now always produce the same corpus.
func Seed(w Writer, n int, now time.Time) (SeedStats, error) {
	var stats SeedStats
	rng := rand.New(rand.NewPCG(42, uint64(n)))

	for i := 0; i < n; i++ {
		item := demoItem(rng, i, now)
		if err := w.Put(&item); err != nil {
			return stats, fmt.Errorf("seed item %s: %w", item.ID, err)
		}
		stats.Items++

		if i%5 == 0 {
			savedAt := now.Add(-time.Duration(rng.IntN(72*60)) * time.Minute)
			if savedAt.Before(item.CreatedAt) {
				savedAt = item.CreatedAt
			}
			if err := w.Save(DemoUserID, item.ID, savedAt); err != nil {
				return stats, fmt.Errorf("seed save %s: %w", item.ID, err)
			}
			stats.Saves++
		}
	}

	for a := 0; a < 4; a++ {
		if err := w.Follow(DemoUserID, demoAuthor(a)); err != nil {
			return stats, fmt.Errorf("seed follow: %w", err)
		}
		stats.Follows++
	}
	return stats, nil
}

func demoAuthor(i int) string {
	return fmt.Sprintf("author-%02d", i)
}

func demoItem(rng *rand.Rand, i int, now time.Time) feed.ContentItem {
	age := time.Duration(rng.IntN(21*24*60)) * time.Minute
	likes := rng.IntN(200)

	item := feed.ContentItem{
		ID:          fmt.Sprintf("post-%04d", i),
		AuthorID:    demoAuthor(rng.IntN(12)),
		CreatedAt:   now.Add(-age),
		Status:      feed.StatusPublished,
		Category:    demoCategories[rng.IntN(len(demoCategories))],
		TextLength:  rng.IntN(400),
		HasImage:    rng.IntN(2) == 0,
		HasLocation: rng.IntN(3) == 0,
		HasReview:   rng.IntN(4) == 0,
		Likes:       likes,
		Comments:    likes / (2 + rng.IntN(8)),
		Shares:      rng.IntN(20),
		Saves:       rng.IntN(30),
	}

	switch {
	case i%17 == 0:
		item.Status = feed.StatusRemoved
	case i%11 == 0:
		item.Status = feed.StatusDraft
	}

	if rng.IntN(2) == 0 {
		recent := rng.IntN(int(item.Interactions()) + 1)
		item.RecentInteractions = &recent
	}
	if item.HasLocation {
		item.Location = &feed.GeoPoint{
			Lat: demoCenter.Lat + (rng.Float64()-0.5)*0.6,
			Lon: demoCenter.Lon + (rng.Float64()-0.5)*0.9,
		}
	}
	return item
}
