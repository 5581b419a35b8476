// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package config provides centralized configuration management for Nearby.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. Every ranking tunable lives under the
feed section and is handed to feed.NewEngine as a feed.Config.

# Configuration Sources

  - Defaults: defaultConfig()
  - YAML file: CONFIG_PATH, or the first of config.yaml, config.yml,
    /etc/nearby/config.yaml, /etc/nearby/config.yml
  - Environment variables: explicit names listed below

# Environment Variables

HTTP Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_TIMEOUT: Per-request timeout (default: 30s)
  - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown bound (default: 10s)

Store:
  - STORE_BACKEND: memory, badger or postgres (default: badger)
  - STORE_PATH: BadgerDB directory (default: /data/nearby)
  - STORE_IN_MEMORY: Run BadgerDB in memory (default: false)
  - STORE_SYNC_WRITES: fsync every BadgerDB write (default: false)
  - STORE_GC_INTERVAL: BadgerDB value log GC interval, 0 disables (default: 10m)
  - POSTGRES_DSN: Connection string, required for postgres
  - POSTGRES_MAX_CONNS: Pool size (default: 10)
  - STORE_SEED_DEMO: Seed an empty store with demo data (default: false)
  - STORE_SEED_COUNT: Demo item count (default: 500)

Circuit Breaker:
  - BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT
  - BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO, BREAKER_CALL_TIMEOUT

Follow Graph:
  - REDIS_ADDR: Enables the Redis follow graph when set
  - REDIS_PASSWORD, REDIS_DB
  - FOLLOW_KEY_PREFIX: Set key prefix (default: nearby:follows:)
  - FOLLOW_CACHE_SIZE: Follow sets kept in memory (default: 10000)
  - FOLLOW_CACHE_TTL: Follow set lifetime, 0 disables the cache (default: 30s)

Feed:
  - API_DEFAULT_PAGE_SIZE, API_MAX_PAGE_SIZE
  - FEED_MAX_CANDIDATES, FEED_FETCH_TIMEOUT
  - FEED_PARALLEL_THRESHOLD, FEED_SCORING_WORKERS
  - FEED_POPULAR_*, FEED_LATEST_*, FEED_DISCOVER_*: strategy tunables

All other feed tunables (weights, freshness curve, quality signals) are set
through the YAML file under feed.discover, feed.popular and feed.latest.

Security:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
  - RATE_LIMIT_WINDOW: Window length (default: 1m)
  - DISABLE_RATE_LIMIT: Disable rate limiting (default: false)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file and line (default: false)

# Validation

Load returns an error naming the offending environment variable when a value
is out of range or a backend is missing required settings. Feed tunables are
checked by feed.Config.Validate.
*/
package config
