// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"sort"
	"time"

	"github.com/tomtom215/nearby/internal/feed"
)

// Writer is implemented by stores that accept corpus writes.
type Writer interface {
	Put(item *feed.ContentItem) error
	Save(userID, itemID string, at time.Time) error
	Follow(userID, authorID string) error
}

// selectCandidates applies filter to items and returns them in adapter
// order. savedAt supplies save times when filter.SavedByUser is set.
func selectCandidates(items []feed.ContentItem, filter *feed.CandidateFilter, savedAt map[string]time.Time) feed.CandidateSet {
	out := make([]feed.ContentItem, 0, len(items))
	for i := range items {
		item := items[i]
		if filter.SavedByUser != "" {
			at, ok := savedAt[item.ID]
			if !ok {
				continue
			}
			item.SavedAt = &at
		}
		if !filter.Matches(&item) {
			continue
		}
		out = append(out, item)
	}

	sortCandidates(out, filter.SavedByUser != "")

	total := len(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return feed.CandidateSet{Items: out, TotalDocs: total}
}

func sortCandidates(items []feed.ContentItem, bySave bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if bySave && a.SavedAt != nil && b.SavedAt != nil && !a.SavedAt.Equal(*b.SavedAt) {
			return a.SavedAt.After(*b.SavedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
