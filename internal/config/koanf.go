// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/store"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/nearby/config.yaml",
	"/etc/nearby/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	breaker := store.DefaultBreakerConfig("repository")

	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:          BackendBadger,
			Path:             "/data/nearby",
			GCInterval:       10 * time.Minute,
			PostgresMaxConns: 10,
			SeedCount:        500,
		},
		Breaker: BreakerConfig{
			MaxRequests:  breaker.MaxRequests,
			Interval:     breaker.Interval,
			Timeout:      breaker.Timeout,
			MinRequests:  breaker.MinRequests,
			FailureRatio: breaker.FailureRatio,
			CallTimeout:  breaker.CallTimeout,
		},
		Follow: FollowConfig{
			KeyPrefix: store.DefaultFollowKeyPrefix,
			CacheSize: 10000,
			CacheTTL:  30 * time.Second,
		},
		Feed: *feed.DefaultConfig(),
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Optional config file (config.yaml or CONFIG_PATH)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// HTTP_PORT -> server.port, FEED_MAX_CANDIDATES -> feed.limits.max_candidates
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, otherwise the first
// existing default path, otherwise "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env strings into slices.
// Values loaded from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// API pagination
	"api_default_page_size": "feed.pagination.default_page_size",
	"api_max_page_size":     "feed.pagination.max_page_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Store
	"store_backend":      "store.backend",
	"store_path":         "store.path",
	"store_in_memory":    "store.in_memory",
	"store_sync_writes":  "store.sync_writes",
	"store_gc_interval":  "store.gc_interval",
	"store_seed_demo":    "store.seed_demo",
	"store_seed_count":   "store.seed_count",
	"postgres_dsn":       "store.postgres_dsn",
	"postgres_max_conns": "store.postgres_max_conns",

	// Circuit breaker
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",
	"breaker_call_timeout":  "breaker.call_timeout",

	// Follow graph
	"redis_addr":        "follow.redis_addr",
	"redis_password":    "follow.redis_password",
	"redis_db":          "follow.redis_db",
	"follow_key_prefix": "follow.key_prefix",
	"follow_cache_size": "follow.cache_size",
	"follow_cache_ttl":  "follow.cache_ttl",

	// Feed limits
	"feed_max_candidates":     "feed.limits.max_candidates",
	"feed_fetch_timeout":      "feed.limits.fetch_timeout",
	"feed_parallel_threshold": "feed.limits.parallel_threshold",
	"feed_scoring_workers":    "feed.limits.scoring_workers",

	// Popular
	"feed_popular_half_life":         "feed.popular.half_life",
	"feed_popular_viral_threshold":   "feed.popular.viral_threshold",
	"feed_popular_viral_multiplier":  "feed.popular.viral_multiplier",
	"feed_popular_min_age":           "feed.popular.min_age",
	"feed_popular_default_timeframe": "feed.popular.default_timeframe",

	// Latest
	"feed_latest_min_text_length":  "feed.latest.min_text_length",
	"feed_latest_min_interactions": "feed.latest.min_interactions",
	"feed_latest_recency_gate":     "feed.latest.recency_gate",

	// Discover
	"feed_discover_engagement_floor":    "feed.discover.engagement_floor",
	"feed_discover_freshness_half_life": "feed.discover.freshness_half_life",
	"feed_discover_momentum_window":     "feed.discover.momentum_window",
	"feed_discover_location_radius_km":  "feed.discover.location_radius_km",
	"feed_discover_long_text_threshold": "feed.discover.long_text_threshold",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Returning "" tells the env provider to skip the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
