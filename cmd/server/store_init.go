// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/nearby/internal/config"
	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/store"
	"github.com/tomtom215/nearby/internal/supervisor/services"
)

// candidateStore is what every backend provides.
type candidateStore interface {
	feed.Repository
	feed.FollowGraph
	store.Writer
}

// storeHandle is an opened backend plus its cleanup.
type storeHandle struct {
	repo  candidateStore
	gc    services.GarbageCollector // nil unless the backend needs GC
	close func()
}

// Close releases the backend.
func (h *storeHandle) Close() {
	if h.close != nil {
		h.close()
	}
}

// openStore opens the configured candidate backend.
func openStore(ctx context.Context, cfg *config.Config) (*storeHandle, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logging.Info().Msg("Using in-memory candidate store")
		return &storeHandle{repo: store.NewMemoryRepository()}, nil

	case config.BackendBadger:
		db, err := store.OpenBadger(store.BadgerOptions{
			Path:       cfg.Store.Path,
			InMemory:   cfg.Store.InMemory,
			SyncWrites: cfg.Store.SyncWrites,
		})
		if err != nil {
			return nil, err
		}
		repo := store.NewBadgerRepository(db)
		logging.Info().Str("path", cfg.Store.Path).Bool("in_memory", cfg.Store.InMemory).
			Msg("BadgerDB candidate store opened")
		return &storeHandle{
			repo: repo,
			gc:   repo,
			close: func() {
				if err := db.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing BadgerDB")
				}
			},
		}, nil

	case config.BackendPostgres:
		pool, err := store.ConnectPostgres(ctx, cfg.Store.PostgresDSN, cfg.Store.PostgresMaxConns)
		if err != nil {
			return nil, err
		}
		repo := store.NewPostgresRepository(pool, cfg.Feed.Limits.FetchTimeout)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logging.Info().Int32("max_conns", cfg.Store.PostgresMaxConns).Msg("PostgreSQL candidate store connected")
		return &storeHandle{repo: repo, close: pool.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// seedIfEmpty writes the demo corpus when the store has no items at all.
func seedIfEmpty(ctx context.Context, h *storeHandle, count int) error {
	set, err := h.repo.FetchCandidates(ctx, feed.CandidateFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("check store before seeding: %w", err)
	}
	if len(set.Items) > 0 || set.TotalDocs > 0 {
		logging.Info().Msg("Store already has content, skipping demo seed")
		return nil
	}

	stats, err := store.Seed(h.repo, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("seed demo content: %w", err)
	}
	logging.Info().
		Int("items", stats.Items).
		Int("saves", stats.Saves).
		Int("follows", stats.Follows).
		Str("demo_user", store.DemoUserID).
		Msg("Demo content seeded")
	return nil
}

// followHandle is the follow graph used for ranking.
type followHandle struct {
	graph  feed.FollowGraph
	pinger interface{ Ping(context.Context) error } // nil when graph is the store
	close  func()
}

// Close releases the follow graph client.
func (h *followHandle) Close() {
	if h.close != nil {
		h.close()
	}
}

// openFollowGraph returns Redis when configured, otherwise the store,
// behind the follow set cache when one is configured.
func openFollowGraph(ctx context.Context, cfg *config.Config, h *storeHandle) (*followHandle, error) {
	fh, err := openFollowSource(ctx, cfg, h)
	if err != nil {
		return nil, err
	}
	if cfg.Follow.CacheTTL > 0 {
		fh.graph = store.NewCachedFollowGraph(fh.graph, cfg.Follow.CacheSize, cfg.Follow.CacheTTL)
		logging.Info().Int("size", cfg.Follow.CacheSize).Dur("ttl", cfg.Follow.CacheTTL).
			Msg("Follow set cache enabled")
	}
	return fh, nil
}

func openFollowSource(ctx context.Context, cfg *config.Config, h *storeHandle) (*followHandle, error) {
	if !cfg.Follow.Enabled() {
		return &followHandle{graph: h.repo}, nil
	}

	client := store.NewRedisClient(store.RedisOptions{
		Addr:     cfg.Follow.RedisAddr,
		Password: cfg.Follow.RedisPassword,
		DB:       cfg.Follow.RedisDB,
	})
	graph := store.NewRedisFollowGraph(client, cfg.Follow.KeyPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := graph.Ping(pingCtx); err != nil {
		// Not fatal: readiness reports it and the breaker guards requests.
		logging.Warn().Err(err).Str("addr", cfg.Follow.RedisAddr).Msg("Redis follow graph unreachable at startup")
	} else {
		logging.Info().Str("addr", cfg.Follow.RedisAddr).Msg("Redis follow graph connected")
	}

	return &followHandle{
		graph:  graph,
		pinger: graph,
		close: func() {
			if err := client.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Redis client")
			}
		},
	}, nil
}

// newBreaker wraps the store and follow graph in one circuit breaker.
func newBreaker(cfg *config.Config, repo feed.Repository, follows feed.FollowGraph) *store.BreakerRepository {
	bc := store.DefaultBreakerConfig("repository")
	bc.MaxRequests = cfg.Breaker.MaxRequests
	bc.Interval = cfg.Breaker.Interval
	bc.Timeout = cfg.Breaker.Timeout
	bc.MinRequests = cfg.Breaker.MinRequests
	bc.FailureRatio = cfg.Breaker.FailureRatio
	bc.CallTimeout = cfg.Breaker.CallTimeout
	return store.NewBreakerRepository(repo, follows, bc)
}
