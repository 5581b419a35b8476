// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/metrics"
	"github.com/tomtom215/nearby/internal/validation"
)

// Engine validates ranking requests, fetches candidates, and dispatches to
// the selected strategy. It is safe for concurrent use.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	strategies map[StrategyName]Strategy
	now        func() time.Time

	mu      sync.RWMutex
	repo    Repository
	follows FollowGraph
}

// NewEngine creates a ranking engine. A nil config selects DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg = cfg.Clone()
	return &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "feed").Logger(),
		strategies: NewStrategies(cfg),
		now:        time.Now,
	}, nil
}

// SetRepository sets the candidate source.
func (e *Engine) SetRepository(repo Repository) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.repo = repo
}

// SetFollowGraph sets the followed-author source. Without one, every author
// counts as outside the requester's follow graph.
func (e *Engine) SetFollowGraph(fg FollowGraph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.follows = fg
}

// SetClock overrides the time source used as the ranking "now".
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Strategy returns the registered strategy by name.
func (e *Engine) Strategy(name StrategyName) (Strategy, bool) {
	s, ok := e.strategies[name]
	return s, ok
}

// Rank produces one page of the requested feed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	req = e.prepareRequest(ctx, req)
	logger := e.createRequestLogger(req)

	strategy, err := e.validateRequest(req)
	if err != nil {
		metrics.RecordFeedRequest(req.Strategy.String(), metrics.OutcomeInvalid, time.Since(start))
		logger.Debug().Err(err).Msg("rejected ranking request")
		return nil, err
	}

	resp, err := e.rank(ctx, req, strategy, logger, start)
	if err != nil {
		outcome := metrics.OutcomeUnavailable
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCanceled
		}
		metrics.RecordFeedRequest(req.Strategy.String(), outcome, time.Since(start))
		logger.Warn().Err(err).Msg("ranking failed")
		return nil, err
	}

	metrics.RecordFeedRequest(req.Strategy.String(), metrics.OutcomeSuccess, time.Since(start))
	logger.Debug().
		Int("candidates", resp.Metadata.Candidates).
		Int("eligible", resp.Metadata.Eligible).
		Int("returned", len(resp.Items)).
		Int("excluded", resp.Excluded).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("ranking complete")

	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) rank(ctx context.Context, req Request, strategy Strategy, logger zerolog.Logger, start time.Time) (*Response, error) {
	repo, follows, now := e.collaborators()
	if repo == nil {
		return nil, fmt.Errorf("%w: no repository configured", ErrRepositoryUnavailable)
	}

	rc, err := e.buildRankingContext(ctx, req, strategy, follows, now)
	if err != nil {
		return nil, err
	}

	set, err := e.fetchCandidates(ctx, repo, strategy, rc)
	if err != nil {
		return nil, err
	}
	metrics.ObserveCandidates(req.Strategy.String(), len(set.Items))

	// Abort before the scoring pass if the caller has gone away.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking aborted before scoring: %w", err)
	}

	eligible, diagnostics := e.screenCandidates(set.Items, strategy, rc, logger)
	norm := strategy.Normalize(eligible, rc)
	scored := e.scoreItems(eligible, strategy, rc, &norm)
	sortScored(scored, strategy)

	resp := e.paginate(req, scored)
	resp.TotalDocs = set.TotalDocs
	if resp.TotalDocs < len(set.Items) {
		resp.TotalDocs = len(set.Items)
	}
	resp.Excluded = len(diagnostics)
	resp.Diagnostics = diagnostics
	resp.Metadata = ResponseMetadata{
		RequestID:   req.RequestID,
		Candidates:  len(set.Items),
		Eligible:    len(scored),
		Truncated:   resp.TotalDocs > len(set.Items),
		LatencyMS:   time.Since(start).Milliseconds(),
		GeneratedAt: rc.Now,
	}
	if resp.Metadata.Truncated {
		logger.Warn().
			Int("fetched", len(set.Items)).
			Int("total_docs", resp.TotalDocs).
			Msg("candidate fetch truncated; feed depth limited to the fetched window")
	}
	return resp, nil
}

func (e *Engine) collaborators() (Repository, FollowGraph, func() time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.repo, e.follows, e.now
}

// prepareRequest applies paging defaults and assigns a request ID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req Request) Request {
	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = e.config.Pagination.DefaultPageSize
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("strategy", req.Strategy.String()).
		Str("user_id", req.UserID).
		Int("page", req.Page).
		Int("page_size", req.PageSize).
		Logger()
}

// validateRequest rejects malformed requests before any repository call.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) validateRequest(req Request) (Strategy, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, verr)
	}

	strategy, ok := e.strategies[req.Strategy]
	if !ok {
		return nil, invalidField("strategy", "unsupported strategy %q", req.Strategy)
	}
	if req.Page < 1 {
		return nil, invalidField("page", "must be at least 1, got %d", req.Page)
	}
	if maxSize := e.config.Pagination.MaxPageSize; req.PageSize < 1 || req.PageSize > maxSize {
		return nil, invalidField("page_size", "must be in [1, %d], got %d", maxSize, req.PageSize)
	}

	reqs := strategy.Requirements()
	if req.Params.Timeframe != "" {
		if !reqs.Timeframe {
			return nil, invalidField("timeframe", "not supported by the %s strategy", req.Strategy)
		}
		if _, ok := req.Params.Timeframe.Duration(); !ok {
			return nil, invalidField("timeframe", "unsupported timeframe %q", req.Params.Timeframe)
		}
	}
	if reqs.User && req.UserID == "" {
		return nil, invalidField("user_id", "required by the %s strategy", req.Strategy)
	}
	return strategy, nil
}

// buildRankingContext resolves the follow graph when the strategy scores
// against it.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildRankingContext(ctx context.Context, req Request, strategy Strategy, follows FollowGraph, now func() time.Time) (*RankingContext, error) {
	rc := &RankingContext{
		UserID:       req.UserID,
		Now:          now(),
		Timeframe:    req.Params.Timeframe,
		Category:     req.Params.Category,
		UserLocation: req.Params.Location,
	}
	if rc.Timeframe == "" && strategy.Requirements().Timeframe {
		rc.Timeframe = e.config.Popular.DefaultTimeframe
	}

	if !strategy.Requirements().FollowGraph || req.UserID == "" || follows == nil {
		return rc, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.Limits.FetchTimeout)
	defer cancel()

	followed, err := follows.Followed(fetchCtx, req.UserID)
	if err != nil {
		return nil, e.wrapFetchError(ctx, "load follow graph", err)
	}
	rc.Followed = followed
	return rc, nil
}

func (e *Engine) fetchCandidates(ctx context.Context, repo Repository, strategy Strategy, rc *RankingContext) (CandidateSet, error) {
	filter := strategy.CandidateFilter(rc)
	// Score-ranked feeds need the whole filtered set; only a fetch already
	// in sort-key order can be cut short without reordering the result.
	if strategy.Requirements().OrderedFetch {
		filter.Limit = e.config.Limits.MaxCandidates
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.Limits.FetchTimeout)
	defer cancel()

	set, err := repo.FetchCandidates(fetchCtx, filter)
	if err != nil {
		return CandidateSet{}, e.wrapFetchError(ctx, "fetch candidates", err)
	}
	return set, nil
}

// wrapFetchError reports caller cancellation as-is and classifies every
// other failure, including our own fetch timeout, as repository
// unavailability.
func (e *Engine) wrapFetchError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, ErrRepositoryUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRepositoryUnavailable, err)
}

// screenCandidates drops duplicates and malformed records with a
// diagnostic, then applies the strategy's hard filter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) screenCandidates(items []ContentItem, strategy Strategy, rc *RankingContext, logger zerolog.Logger) ([]ContentItem, []Diagnostic) {
	seen := make(map[string]struct{}, len(items))
	eligible := make([]ContentItem, 0, len(items))
	var diagnostics []Diagnostic
	name := strategy.Name().String()

	for i := range items {
		item := &items[i]

		reason := malformedReason(item, strategy.Requirements())
		if reason == "" {
			if _, dup := seen[item.ID]; dup {
				reason = ReasonDuplicateID
			}
		}
		if reason != "" {
			diagnostics = append(diagnostics, Diagnostic{ItemID: item.ID, Reason: reason})
			metrics.RecordExcludedItem(name, reason)
			logger.Warn().Str("item_id", item.ID).Str("reason", reason).Msg("excluding malformed candidate")
			continue
		}
		seen[item.ID] = struct{}{}

		if strategy.Eligible(item, rc) {
			eligible = append(eligible, *item)
		}
	}
	return eligible, diagnostics
}

// malformedReason returns why an item cannot be scored, or "".
func malformedReason(item *ContentItem, reqs Requirements) string {
	switch {
	case item.ID == "":
		return ReasonMissingID
	case item.CreatedAt.IsZero():
		return ReasonMissingCreatedAt
	case item.Likes < 0 || item.Comments < 0 || item.Shares < 0 || item.Saves < 0:
		return ReasonNegativeCounter
	case item.TextLength < 0:
		return ReasonNegativeLength
	case item.RecentInteractions != nil && *item.RecentInteractions < 0:
		return ReasonNegativeRecentCnt
	case item.LocationRelevance != nil && !isUnitInterval(*item.LocationRelevance):
		return ReasonInvalidRelevance
	case item.Location != nil && !isValidPoint(*item.Location):
		return ReasonInvalidLocation
	case reqs.SavedSet && item.SavedAt == nil:
		return ReasonMissingSavedAt
	}
	return ""
}

func isUnitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func isValidPoint(p GeoPoint) bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// scoreItems scores every eligible item. Large sets fan out across
// goroutines, each writing a disjoint range of the result slice.
func (e *Engine) scoreItems(items []ContentItem, strategy Strategy, rc *RankingContext, norm *NormalizationContext) []ScoredItem {
	scored := make([]ScoredItem, len(items))

	threshold := e.config.Limits.ParallelThreshold
	if threshold == 0 || len(items) < threshold {
		for i := range items {
			scored[i] = strategy.Score(&items[i], rc, norm)
		}
		return scored
	}

	workers := e.config.Limits.ScoringWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := (len(items) + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < len(items); lo += chunk {
		hi := min(lo+chunk, len(items))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				scored[i] = strategy.Score(&items[i], rc, norm)
			}
		}(lo, hi)
	}
	wg.Wait()
	return scored
}

// sortScored performs the single full sort: strategy key first, then ID
// ascending. Rank is assigned over the full ordering.
func sortScored(items []ScoredItem, strategy Strategy) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if strategy.Less(a, b) {
			return true
		}
		if strategy.Less(b, a) {
			return false
		}
		return a.Item.ID < b.Item.ID
	})
	for i := range items {
		items[i].Rank = i + 1
	}
}

// paginate slices [(page-1)*size, page*size) from the sorted set.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) paginate(req Request, items []ScoredItem) *Response {
	resp := &Response{
		Strategy: req.Strategy,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    []ScoredItem{},
	}

	startIdx := (req.Page - 1) * req.PageSize
	if startIdx >= len(items) {
		return resp
	}
	endIdx := min(startIdx+req.PageSize, len(items))

	resp.Items = items[startIdx:endIdx]
	resp.HasNextPage = endIdx < len(items)
	return resp
}
