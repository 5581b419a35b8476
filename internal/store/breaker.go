// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/metrics"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("not found")

// BreakerConfig configures a BreakerRepository.
type BreakerConfig struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic reset period for counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// MinRequests is the request count below which the breaker never trips.
	MinRequests uint32

	// FailureRatio opens the breaker once failures/requests reaches it.
	FailureRatio float64

	// CallTimeout bounds every wrapped call. Zero disables it.
	CallTimeout time.Duration
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
		CallTimeout:  2 * time.Second,
	}
}

// BreakerRepository wraps a Repository and an optional FollowGraph with a
// circuit breaker. Every failure, timeout or rejection is reported as
// feed.ErrRepositoryUnavailable. Caller cancellation passes through
// unchanged and does not count against the breaker.
type BreakerRepository struct {
	repo    feed.Repository
	follows feed.FollowGraph
	cb      *gobreaker.CircuitBreaker[interface{}]
	name    string
	timeout time.Duration
}

var (
	_ feed.Repository  = (*BreakerRepository)(nil)
	_ feed.FollowGraph = (*BreakerRepository)(nil)
)

// NewBreakerRepository wraps repo and follows. follows may be nil.
//
//nolint:gocritic // config copied once at construction
func NewBreakerRepository(repo feed.Repository, follows feed.FollowGraph, cfg BreakerConfig) *BreakerRepository {
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().
					Str("breaker", cfg.Name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// Caller cancellation says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerRepository{
		repo:    repo,
		follows: follows,
		cb:      cb,
		name:    cfg.Name,
		timeout: cfg.CallTimeout,
	}
}

// State returns the breaker state as a string.
func (b *BreakerRepository) State() string {
	return stateToString(b.cb.State())
}

// FetchCandidates implements feed.Repository.
func (b *BreakerRepository) FetchCandidates(ctx context.Context, filter feed.CandidateFilter) (feed.CandidateSet, error) {
	result, err := b.execute(ctx, func(callCtx context.Context) (interface{}, error) {
		return b.repo.FetchCandidates(callCtx, filter)
	})
	if err != nil {
		return feed.CandidateSet{}, err
	}
	set, ok := result.(feed.CandidateSet)
	if !ok {
		return feed.CandidateSet{}, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return set, nil
}

// Followed implements feed.FollowGraph. Without a wrapped follow graph it
// returns an empty set.
func (b *BreakerRepository) Followed(ctx context.Context, userID string) (map[string]struct{}, error) {
	if b.follows == nil {
		return map[string]struct{}{}, nil
	}
	result, err := b.execute(ctx, func(callCtx context.Context) (interface{}, error) {
		return b.follows.Followed(callCtx, userID)
	})
	if err != nil {
		return nil, err
	}
	followed, ok := result.(map[string]struct{})
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return followed, nil
}

// Ping fetches at most one candidate through the breaker.
func (b *BreakerRepository) Ping(ctx context.Context) error {
	_, err := b.FetchCandidates(ctx, feed.CandidateFilter{Status: feed.StatusPublished, Limit: 1})
	return err
}

func (b *BreakerRepository) execute(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	callCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn(callCtx)
	})
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		logging.Warn().Str("breaker", b.name).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
	} else {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return nil, fmt.Errorf("%s: %w: %w", b.name, feed.ErrRepositoryUnavailable, err)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
