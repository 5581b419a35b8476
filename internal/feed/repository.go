// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"context"
	"time"
)

// CandidateFilter is the coarse filter pushed down to the repository.
// Zero values mean "no constraint".
type CandidateFilter struct {
	// Status restricts candidates to a publication state.
	Status Status

	// Category restricts candidates to a single category.
	Category string

	// AuthorIn restricts candidates to a set of authors.
	AuthorIn []string

	// SavedByUser returns the user's saved set, ordered by save time
	// descending, with ContentItem.SavedAt populated.
	SavedByUser string

	// Since excludes items created before this instant.
	Since time.Time

	// Limit caps the number of returned items. Zero means unlimited.
	Limit int
}

// Matches reports whether an item satisfies the status, category, author
// and since constraints. Saved-set membership is the repository's concern.
func (f *CandidateFilter) Matches(item *ContentItem) bool {
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if !f.Since.IsZero() && item.CreatedAt.Before(f.Since) {
		return false
	}
	if len(f.AuthorIn) > 0 {
		found := false
		for _, a := range f.AuthorIn {
			if a == item.AuthorID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CandidateSet is an unranked batch of candidates.
type CandidateSet struct {
	Items []ContentItem

	// TotalDocs is the repository's best-effort count of matching
	// documents, which may exceed len(Items) when Limit applied.
	TotalDocs int
}

// Repository supplies candidate content. Implementations must populate
// engagement counters; the engine never computes them.
type Repository interface {
	FetchCandidates(ctx context.Context, filter CandidateFilter) (CandidateSet, error)
}

// FollowGraph returns the set of authors a user follows.
type FollowGraph interface {
	Followed(ctx context.Context, userID string) (map[string]struct{}, error)
}
