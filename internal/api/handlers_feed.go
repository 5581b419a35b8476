// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/logging"
)

// UserIDHeader identifies the requester. Authentication happens upstream;
// an absent header means an anonymous request.
const UserIDHeader = "X-User-ID"

// Feed handles GET /api/v1/feeds/{strategy}.
//
// Query parameters:
//   - page: 1-based page number (default 1)
//   - page_size: items per page (default from config)
//   - timeframe: 24h, 7d or 30d (popular only)
//   - category: category slug
//   - lat, lon: requester location, both or neither
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := parseFeedRequest(r)
	if err != nil {
		respondRankError(w, r, err)
		return
	}

	resp, err := h.ranker.Rank(r.Context(), req)
	if err != nil {
		respondRankError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("strategy", string(resp.Strategy)).
		Int("page", resp.Page).
		Int("items", len(resp.Items)).
		Int("total_docs", resp.TotalDocs).
		Msg("Feed served")

	respondSuccess(w, resp, start)
}

// parseFeedRequest builds a feed.Request from the path, query and headers.
// Range checks are left to the engine; only syntax is checked here.
func parseFeedRequest(r *http.Request) (feed.Request, error) {
	strategy, err := feed.ParseStrategy(chi.URLParam(r, "strategy"))
	if err != nil {
		return feed.Request{}, err
	}

	q := r.URL.Query()

	page, err := intQuery(q, "page")
	if err != nil {
		return feed.Request{}, err
	}
	pageSize, err := intQuery(q, "page_size")
	if err != nil {
		return feed.Request{}, err
	}
	location, err := locationQuery(q)
	if err != nil {
		return feed.Request{}, err
	}

	return feed.Request{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Strategy:  strategy,
		UserID:    strings.TrimSpace(r.Header.Get(UserIDHeader)),
		Page:      page,
		PageSize:  pageSize,
		Params: feed.Params{
			Timeframe: feed.Timeframe(strings.TrimSpace(q.Get("timeframe"))),
			Category:  strings.TrimSpace(q.Get("category")),
			Location:  location,
		},
	}, nil
}

// intQuery parses an optional integer parameter. Absent means zero, which
// the engine treats as "use the default".
func intQuery(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &feed.RequestError{Field: key, Reason: "must be an integer"}
	}
	return v, nil
}

func locationQuery(q url.Values) (*feed.GeoPoint, error) {
	rawLat := strings.TrimSpace(q.Get("lat"))
	rawLon := strings.TrimSpace(q.Get("lon"))
	if rawLat == "" && rawLon == "" {
		return nil, nil
	}
	if rawLat == "" || rawLon == "" {
		return nil, &feed.RequestError{Field: "location", Reason: "lat and lon must be given together"}
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, &feed.RequestError{Field: "lat", Reason: "must be a number"}
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return nil, &feed.RequestError{Field: "lon", Reason: "must be a number"}
	}
	return &feed.GeoPoint{Lat: lat, Lon: lon}, nil
}
