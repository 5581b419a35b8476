// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/metrics"
)

// DefaultFollowKeyPrefix namespaces follow sets in Redis.
const DefaultFollowKeyPrefix = "nearby:follows:"

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client. It does not dial until first use.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// RedisFollowGraph reads follow sets stored as Redis sets keyed by user.
type RedisFollowGraph struct {
	client    *redis.Client
	keyPrefix string
}

var _ feed.FollowGraph = (*RedisFollowGraph)(nil)

// NewRedisFollowGraph creates a follow graph. An empty prefix selects
// DefaultFollowKeyPrefix.
func NewRedisFollowGraph(client *redis.Client, keyPrefix string) *RedisFollowGraph {
	if keyPrefix == "" {
		keyPrefix = DefaultFollowKeyPrefix
	}
	return &RedisFollowGraph{client: client, keyPrefix: keyPrefix}
}

func (g *RedisFollowGraph) key(userID string) string {
	return g.keyPrefix + userID
}

// Followed implements feed.FollowGraph. A missing key is an empty set.
func (g *RedisFollowGraph) Followed(ctx context.Context, userID string) (map[string]struct{}, error) {
	start := time.Now()
	members, err := g.client.SMembers(ctx, g.key(userID)).Result()
	metrics.RecordRepositoryFetch("redis", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", g.key(userID), err)
	}

	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

// Follow adds authorID to userID's follow set.
func (g *RedisFollowGraph) Follow(ctx context.Context, userID, authorID string) error {
	if err := g.client.SAdd(ctx, g.key(userID), authorID).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", g.key(userID), err)
	}
	return nil
}

// Unfollow removes authorID from userID's follow set.
func (g *RedisFollowGraph) Unfollow(ctx context.Context, userID, authorID string) error {
	if err := g.client.SRem(ctx, g.key(userID), authorID).Err(); err != nil {
		return fmt.Errorf("srem %s: %w", g.key(userID), err)
	}
	return nil
}

// Ping checks connectivity.
func (g *RedisFollowGraph) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
