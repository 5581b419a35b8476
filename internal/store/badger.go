// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	itemKeyPrefix   = "item:"
	saveKeyPrefix   = "save:"
	followKeyPrefix = "follow:"
)

// userKeyPrefix returns the scan prefix for one user's keys under kind.
// The user ID is length-prefixed so IDs containing ':' cannot alias
// another user's range: "bob" and "bob:x" give "save:3:bob:" and
// "save:5:bob:x:".
func userKeyPrefix(kind, userID string) string {
	return kind + strconv.Itoa(len(userID)) + ":" + userID + ":"
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Used by tests and demos.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// OpenBadger opens a BadgerDB instance with logging disabled.
func OpenBadger(opts BadgerOptions) (*badger.DB, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// BadgerRepository stores the corpus in BadgerDB. The caller owns the DB
// handle and closes it.
type BadgerRepository struct {
	db *badger.DB
}

var (
	_ feed.Repository  = (*BadgerRepository)(nil)
	_ feed.FollowGraph = (*BadgerRepository)(nil)
	_ Writer           = (*BadgerRepository)(nil)
)

// NewBadgerRepository creates a repository over an open DB.
func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

// Put inserts or replaces an item. SavedAt is per-user state and is not
// persisted on the item.
func (r *BadgerRepository) Put(item *feed.ContentItem) error {
	if item.ID == "" {
		return fmt.Errorf("put item: empty id")
	}
	stored := *item
	stored.SavedAt = nil

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(itemKeyPrefix+item.ID), data)
	})
}

// Get returns a stored item by ID.
func (r *BadgerRepository) Get(id string) (*feed.ContentItem, error) {
	var item feed.ContentItem
	err := r.db.View(func(txn *badger.Txn) error {
		found, err := getItem(txn, id, &item)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Save records that userID saved itemID at the given time.
func (r *BadgerRepository) Save(userID, itemID string, at time.Time) error {
	if userID == "" || itemID == "" {
		return fmt.Errorf("save: user and item id are required")
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix(saveKeyPrefix, userID) + itemID)
		return txn.Set(key, []byte(at.UTC().Format(time.RFC3339Nano)))
	})
}

// Unsave removes a save. Missing saves are ignored.
func (r *BadgerRepository) Unsave(userID, itemID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(userKeyPrefix(saveKeyPrefix, userID) + itemID))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete save: %w", err)
		}
		return nil
	})
}

// Follow records that userID follows authorID.
func (r *BadgerRepository) Follow(userID, authorID string) error {
	if userID == "" || authorID == "" {
		return fmt.Errorf("follow: user and author id are required")
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix(followKeyPrefix, userID)+authorID), nil)
	})
}

// FetchCandidates implements feed.Repository.
func (r *BadgerRepository) FetchCandidates(ctx context.Context, filter feed.CandidateFilter) (feed.CandidateSet, error) {
	start := time.Now()

	var (
		items   []feed.ContentItem
		savedAt map[string]time.Time
	)
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		if filter.SavedByUser != "" {
			items, savedAt, err = r.scanSaved(ctx, txn, filter.SavedByUser)
		} else {
			items, err = r.scanItems(ctx, txn)
		}
		return err
	})
	metrics.RecordRepositoryFetch("badger", time.Since(start), err)
	if err != nil {
		return feed.CandidateSet{}, err
	}

	return selectCandidates(items, &filter, savedAt), nil
}

// Followed implements feed.FollowGraph.
func (r *BadgerRepository) Followed(ctx context.Context, userID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	prefix := []byte(userKeyPrefix(followKeyPrefix, userID))

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			out[strings.TrimPrefix(key, string(prefix))] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	return out, nil
}

// RunGC runs value log garbage collection until nothing is rewritten.
func (r *BadgerRepository) RunGC() error {
	for {
		err := r.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

func (r *BadgerRepository) scanItems(ctx context.Context, txn *badger.Txn) ([]feed.ContentItem, error) {
	prefix := []byte(itemKeyPrefix)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var items []feed.ContentItem
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var item feed.ContentItem
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *BadgerRepository) scanSaved(ctx context.Context, txn *badger.Txn, userID string) ([]feed.ContentItem, map[string]time.Time, error) {
	savedAt, err := scanSaveTimes(ctx, txn, userID)
	if err != nil {
		return nil, nil, err
	}

	// Saves pointing at deleted items are skipped.
	items := make([]feed.ContentItem, 0, len(savedAt))
	for id := range savedAt {
		var item feed.ContentItem
		found, err := getItem(txn, id, &item)
		if err != nil {
			return nil, nil, err
		}
		if found {
			items = append(items, item)
		}
	}
	return items, savedAt, nil
}

func getItem(txn *badger.Txn, id string, into *feed.ContentItem) (bool, error) {
	entry, err := txn.Get([]byte(itemKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get item %s: %w", id, err)
	}
	if err := entry.Value(func(val []byte) error {
		return json.Unmarshal(val, into)
	}); err != nil {
		return false, fmt.Errorf("decode item %s: %w", id, err)
	}
	return true, nil
}

func scanSaveTimes(ctx context.Context, txn *badger.Txn, userID string) (map[string]time.Time, error) {
	prefix := []byte(userKeyPrefix(saveKeyPrefix, userID))
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	savedAt := make(map[string]time.Time)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
		err := it.Item().Value(func(val []byte) error {
			at, err := time.Parse(time.RFC3339Nano, string(val))
			if err != nil {
				return err
			}
			savedAt[id] = at
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("decode save %s: %w", id, err)
		}
	}
	return savedAt, nil
}
