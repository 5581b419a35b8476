// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/metrics"
)

// MemoryRepository keeps the corpus in process. It is safe for concurrent
// use.
type MemoryRepository struct {
	mu      sync.RWMutex
	items   map[string]feed.ContentItem
	saves   map[string]map[string]time.Time
	follows map[string]map[string]struct{}
}

var (
	_ feed.Repository  = (*MemoryRepository)(nil)
	_ feed.FollowGraph = (*MemoryRepository)(nil)
	_ Writer           = (*MemoryRepository)(nil)
)

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:   make(map[string]feed.ContentItem),
		saves:   make(map[string]map[string]time.Time),
		follows: make(map[string]map[string]struct{}),
	}
}

// Put inserts or replaces an item.
func (m *MemoryRepository) Put(item *feed.ContentItem) error {
	if item.ID == "" {
		return fmt.Errorf("put item: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

// Save records that userID saved itemID at the given time.
func (m *MemoryRepository) Save(userID, itemID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saves[userID] == nil {
		m.saves[userID] = make(map[string]time.Time)
	}
	m.saves[userID][itemID] = at
	return nil
}

// Unsave removes a save. Missing saves are ignored.
func (m *MemoryRepository) Unsave(userID, itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves[userID], itemID)
}

// Follow records that userID follows authorID.
func (m *MemoryRepository) Follow(userID, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.follows[userID] == nil {
		m.follows[userID] = make(map[string]struct{})
	}
	m.follows[userID][authorID] = struct{}{}
	return nil
}

// Len returns the number of stored items.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// FetchCandidates implements feed.Repository.
func (m *MemoryRepository) FetchCandidates(ctx context.Context, filter feed.CandidateFilter) (feed.CandidateSet, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		metrics.RecordRepositoryFetch("memory", time.Since(start), err)
		return feed.CandidateSet{}, err
	}

	m.mu.RLock()
	items := make([]feed.ContentItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	var savedAt map[string]time.Time
	if filter.SavedByUser != "" {
		savedAt = make(map[string]time.Time, len(m.saves[filter.SavedByUser]))
		for id, at := range m.saves[filter.SavedByUser] {
			savedAt[id] = at
		}
	}
	m.mu.RUnlock()

	set := selectCandidates(items, &filter, savedAt)
	metrics.RecordRepositoryFetch("memory", time.Since(start), nil)
	return set, nil
}

// Followed implements feed.FollowGraph.
func (m *MemoryRepository) Followed(ctx context.Context, userID string) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]struct{}, len(m.follows[userID]))
	for author := range m.follows[userID] {
		out[author] = struct{}{}
	}
	return out, nil
}
