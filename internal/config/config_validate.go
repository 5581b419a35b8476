// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if c.Follow.CacheSize < 0 {
		return fmt.Errorf("FOLLOW_CACHE_SIZE must not be negative")
	}
	if c.Follow.CacheTTL < 0 {
		return fmt.Errorf("FOLLOW_CACHE_TTL must not be negative")
	}

	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateStore validates the selected backend's settings
func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger:
		if !c.Store.InMemory && c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_BACKEND=badger and STORE_IN_MEMORY=false")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
		if c.Store.PostgresMaxConns < 1 {
			return fmt.Errorf("POSTGRES_MAX_CONNS must be at least 1")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: memory, badger, postgres")
	}

	if c.Store.GCInterval < 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must not be negative")
	}
	if c.Store.SeedDemo && c.Store.SeedCount < 1 {
		return fmt.Errorf("STORE_SEED_COUNT must be at least 1 when STORE_SEED_DEMO=true")
	}
	return nil
}

func (c *Config) validateBreaker() error {
	b := &c.Breaker
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if b.MinRequests < 1 {
		return fmt.Errorf("BREAKER_MIN_REQUESTS must be at least 1")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if b.CallTimeout < 0 {
		return fmt.Errorf("BREAKER_CALL_TIMEOUT must not be negative")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true when CORS allows any origin, which is
// logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
