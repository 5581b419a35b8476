// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package store provides candidate sources and follow graphs for the ranking
engine.

# Backends

  - MemoryRepository: in-process corpus for tests and demo seeding
  - BadgerRepository: embedded key-value store (github.com/dgraph-io/badger/v4)
  - PostgresRepository: relational source over pgxpool
  - RedisFollowGraph: follow sets cached in Redis

Every backend implements feed.Repository; Memory, Badger and Postgres also
implement feed.FollowGraph. All return candidates newest first (saved sets:
most recently saved first) with TotalDocs counted before Limit applies.

# Resilience

BreakerRepository wraps any Repository and FollowGraph with a per-call
timeout and a circuit breaker (github.com/sony/gobreaker/v2). Failures and
rejections surface as feed.ErrRepositoryUnavailable so the API answers 503.
Breaker state is exported as nearby_circuit_breaker_state.

# Badger Key Layout

	item:<id>                     JSON-encoded feed.ContentItem
	save:<len>:<user>:<id>        RFC 3339 save timestamp
	follow:<len>:<user>:<author>  empty value

<len> is the byte length of the user ID, so a user ID containing ':'
never shares a scan prefix with another user.
*/
package store
