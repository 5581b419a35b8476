// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/nearby/internal/feed"
)

// Config holds all service configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Server: HTTP listener (port, host, timeout)
//     - Store: Candidate source (memory, badger, postgres) and demo seeding
//     - Breaker: Circuit breaker around the candidate source
//     - Follow: Optional Redis follow graph
//
//  2. Ranking:
//     - Feed: Every ranking tunable, passed to feed.NewEngine unchanged
//
//  3. API & Observability:
//     - Security: CORS and rate limiting
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	engine := feed.NewEngine(&cfg.Feed, logger)
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Follow   FollowConfig   `koanf:"follow"`
	Feed     feed.Config    `koanf:"feed"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Address returns the host:port listen address.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Store backends
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// StoreConfig selects and configures the candidate source.
type StoreConfig struct {
	// Backend is one of memory, badger, postgres.
	// Default: badger
	Backend string `koanf:"backend"`

	// Path is the BadgerDB data directory.
	Path string `koanf:"path"`

	// InMemory runs BadgerDB without touching disk.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every BadgerDB write.
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is how often BadgerDB value log GC runs. Zero disables it.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`

	PostgresDSN      string `koanf:"postgres_dsn"`
	PostgresMaxConns int32  `koanf:"postgres_max_conns"`

	// SeedDemo fills an empty store with a deterministic demo corpus.
	SeedDemo bool `koanf:"seed_demo"`

	// SeedCount is the number of demo items.
	// Default: 500
	SeedCount int `koanf:"seed_count"`
}

// BreakerConfig holds circuit breaker settings for the candidate source
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
	CallTimeout  time.Duration `koanf:"call_timeout"`
}

// FollowConfig configures the optional Redis follow graph. When Addr is
// empty the store backend's own follow data is used.
type FollowConfig struct {
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`

	// CacheSize is the number of follow sets kept in memory.
	// Default: 10000
	CacheSize int `koanf:"cache_size"`

	// CacheTTL is how long a cached follow set is trusted. Zero disables
	// the cache.
	// Default: 30s
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// Enabled reports whether a Redis follow graph is configured.
func (f *FollowConfig) Enabled() bool {
	return f.RedisAddr != ""
}

// SecurityConfig holds CORS and rate limit settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load loads configuration using Koanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
