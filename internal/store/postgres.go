// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/metrics"
)

// postgresSchema creates the tables read by PostgresRepository.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS content_items (
	id                  TEXT PRIMARY KEY,
	author_id           TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	status              TEXT NOT NULL,
	category            TEXT NOT NULL DEFAULT '',
	text_length         INTEGER NOT NULL DEFAULT 0,
	has_image           BOOLEAN NOT NULL DEFAULT FALSE,
	has_location        BOOLEAN NOT NULL DEFAULT FALSE,
	has_review          BOOLEAN NOT NULL DEFAULT FALSE,
	likes               INTEGER NOT NULL DEFAULT 0,
	comments            INTEGER NOT NULL DEFAULT 0,
	shares              INTEGER NOT NULL DEFAULT 0,
	saves               INTEGER NOT NULL DEFAULT 0,
	recent_interactions INTEGER,
	location_relevance  DOUBLE PRECISION,
	lat                 DOUBLE PRECISION,
	lon                 DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS content_items_status_created_idx ON content_items (status, created_at DESC);

CREATE TABLE IF NOT EXISTS saved_items (
	user_id  TEXT NOT NULL,
	item_id  TEXT NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS follows (
	user_id   TEXT NOT NULL,
	author_id TEXT NOT NULL,
	PRIMARY KEY (user_id, author_id)
);
`

const contentColumns = `c.id, c.author_id, c.created_at, c.status, c.category, c.text_length,
	c.has_image, c.has_location, c.has_review, c.likes, c.comments, c.shares, c.saves,
	c.recent_interactions, c.location_relevance, c.lat, c.lon`

// ConnectPostgres creates a connection pool.
func ConnectPostgres(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// PostgresRepository reads candidates from content_items and saved_items.
type PostgresRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var (
	_ feed.Repository  = (*PostgresRepository)(nil)
	_ feed.FollowGraph = (*PostgresRepository)(nil)
	_ Writer           = (*PostgresRepository)(nil)
)

// NewPostgresRepository creates a repository. timeout bounds each query
// when the caller's context has no deadline.
func NewPostgresRepository(pool *pgxpool.Pool, timeout time.Duration) *PostgresRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostgresRepository{pool: pool, timeout: timeout}
}

func (p *PostgresRepository) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// EnsureSchema creates the tables if they do not exist.
func (p *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// FetchCandidates implements feed.Repository.
func (p *PostgresRepository) FetchCandidates(ctx context.Context, filter feed.CandidateFilter) (feed.CandidateSet, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	query, args := buildCandidateQuery(&filter)

	start := time.Now()
	set, err := p.queryCandidates(ctx, query, args)
	metrics.RecordRepositoryFetch("postgres", time.Since(start), err)
	if err != nil {
		return feed.CandidateSet{}, fmt.Errorf("fetch candidates: %w", err)
	}
	return set, nil
}

func (p *PostgresRepository) queryCandidates(ctx context.Context, query string, args []interface{}) (feed.CandidateSet, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return feed.CandidateSet{}, err
	}
	defer rows.Close()

	var set feed.CandidateSet
	for rows.Next() {
		var (
			item     feed.ContentItem
			status   string
			recent   *int32
			lat, lon *float64
			savedAt  *time.Time
			total    int64
		)
		if err := rows.Scan(
			&item.ID, &item.AuthorID, &item.CreatedAt, &status, &item.Category, &item.TextLength,
			&item.HasImage, &item.HasLocation, &item.HasReview,
			&item.Likes, &item.Comments, &item.Shares, &item.Saves,
			&recent, &item.LocationRelevance, &lat, &lon,
			&savedAt, &total,
		); err != nil {
			return feed.CandidateSet{}, fmt.Errorf("scan row: %w", err)
		}
		item.Status = feed.Status(status)
		if recent != nil {
			n := int(*recent)
			item.RecentInteractions = &n
		}
		if lat != nil && lon != nil {
			item.Location = &feed.GeoPoint{Lat: *lat, Lon: *lon}
		}
		item.SavedAt = savedAt
		set.Items = append(set.Items, item)
		set.TotalDocs = int(total)
	}
	if err := rows.Err(); err != nil {
		return feed.CandidateSet{}, err
	}
	return set, nil
}

// buildCandidateQuery renders the filter as parameterized SQL. count(*)
// OVER () reports the match count before LIMIT.
func buildCandidateQuery(filter *feed.CandidateFilter) (string, []interface{}) {
	var (
		b     strings.Builder
		args  []interface{}
		where []string
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	b.WriteString("SELECT ")
	b.WriteString(contentColumns)

	if filter.SavedByUser != "" {
		b.WriteString(", s.saved_at, count(*) OVER () FROM content_items c JOIN saved_items s ON s.item_id = c.id AND s.user_id = ")
		b.WriteString(arg(filter.SavedByUser))
	} else {
		b.WriteString(", NULL::timestamptz, count(*) OVER () FROM content_items c")
	}

	if filter.Status != "" {
		where = append(where, "c.status = "+arg(string(filter.Status)))
	}
	if filter.Category != "" {
		where = append(where, "c.category = "+arg(filter.Category))
	}
	if len(filter.AuthorIn) > 0 {
		where = append(where, "c.author_id = ANY("+arg(filter.AuthorIn)+")")
	}
	if !filter.Since.IsZero() {
		where = append(where, "c.created_at >= "+arg(filter.Since))
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	if filter.SavedByUser != "" {
		b.WriteString(" ORDER BY s.saved_at DESC, c.id ASC")
	} else {
		b.WriteString(" ORDER BY c.created_at DESC, c.id ASC")
	}
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(arg(filter.Limit))
	}
	return b.String(), args
}

// Followed implements feed.FollowGraph.
func (p *PostgresRepository) Followed(ctx context.Context, userID string) (map[string]struct{}, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, `SELECT author_id FROM follows WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	authors, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}

	out := make(map[string]struct{}, len(authors))
	for _, a := range authors {
		out[a] = struct{}{}
	}
	return out, nil
}

// Put upserts an item.
func (p *PostgresRepository) Put(item *feed.ContentItem) error {
	ctx, cancel := p.connCtx(context.Background())
	defer cancel()

	var lat, lon *float64
	if item.Location != nil {
		lat, lon = &item.Location.Lat, &item.Location.Lon
	}

	_, err := p.pool.Exec(ctx, `
INSERT INTO content_items (id, author_id, created_at, status, category, text_length,
	has_image, has_location, has_review, likes, comments, shares, saves,
	recent_interactions, location_relevance, lat, lon)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (id) DO UPDATE SET
	author_id = EXCLUDED.author_id, created_at = EXCLUDED.created_at, status = EXCLUDED.status,
	category = EXCLUDED.category, text_length = EXCLUDED.text_length,
	has_image = EXCLUDED.has_image, has_location = EXCLUDED.has_location, has_review = EXCLUDED.has_review,
	likes = EXCLUDED.likes, comments = EXCLUDED.comments, shares = EXCLUDED.shares, saves = EXCLUDED.saves,
	recent_interactions = EXCLUDED.recent_interactions, location_relevance = EXCLUDED.location_relevance,
	lat = EXCLUDED.lat, lon = EXCLUDED.lon
`, item.ID, item.AuthorID, item.CreatedAt, string(item.Status), item.Category, item.TextLength,
		item.HasImage, item.HasLocation, item.HasReview,
		item.Likes, item.Comments, item.Shares, item.Saves,
		item.RecentInteractions, item.LocationRelevance, lat, lon)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// Save upserts a save.
func (p *PostgresRepository) Save(userID, itemID string, at time.Time) error {
	ctx, cancel := p.connCtx(context.Background())
	defer cancel()

	_, err := p.pool.Exec(ctx, `
INSERT INTO saved_items (user_id, item_id, saved_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id, item_id) DO UPDATE SET saved_at = EXCLUDED.saved_at
`, userID, itemID, at)
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	return nil
}

// Follow records a follow edge.
func (p *PostgresRepository) Follow(userID, authorID string) error {
	ctx, cancel := p.connCtx(context.Background())
	defer cancel()

	_, err := p.pool.Exec(ctx, `
INSERT INTO follows (user_id, author_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
`, userID, authorID)
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (p *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	return p.pool.Ping(ctx)
}
