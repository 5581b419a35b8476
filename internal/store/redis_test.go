// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

// TestRedisFollowGraph runs against a live server when
// NEARBY_TEST_REDIS_ADDR is set.
func TestRedisFollowGraph(t *testing.T) {
	addr := os.Getenv("NEARBY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NEARBY_TEST_REDIS_ADDR not set")
	}

	client := NewRedisClient(RedisOptions{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	// Unique prefix keeps parallel runs apart.
	prefix := "nearby:test:" + uuid.NewString() + ":"
	graph := NewRedisFollowGraph(client, prefix)
	ctx := context.Background()

	if err := graph.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Del(context.Background(), prefix+"u1").Err() })

	empty, err := graph.Followed(ctx, "u1")
	if err != nil {
		t.Fatalf("Followed() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Followed() on missing key = %v, want empty", empty)
	}

	for _, a := range []string{"alice", "bob", "alice"} {
		if err := graph.Follow(ctx, "u1", a); err != nil {
			t.Fatalf("Follow() error = %v", err)
		}
	}
	if err := graph.Unfollow(ctx, "u1", "bob"); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}

	followed, err := graph.Followed(ctx, "u1")
	if err != nil {
		t.Fatalf("Followed() error = %v", err)
	}
	if _, ok := followed["alice"]; !ok || len(followed) != 1 {
		t.Errorf("Followed() = %v, want {alice}", followed)
	}
}

func TestNewRedisFollowGraph_DefaultPrefix(t *testing.T) {
	t.Parallel()

	client := NewRedisClient(RedisOptions{Addr: "localhost:0"})
	defer client.Close()

	g := NewRedisFollowGraph(client, "")
	if got := g.key("u1"); got != DefaultFollowKeyPrefix+"u1" {
		t.Errorf("key = %q", got)
	}
}
