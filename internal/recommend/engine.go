// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/cache"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/metrics"
)

// Engine composes the neighbor finder and the ranker into book
// recommendations and caches the results. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	store   Store
	finder  *NeighborFinder
	ranker  *Ranker
	results *cache.LRU[resultKey, []Recommendation]

	// generations counts invalidations per user. A list computed while the
	// user's generation moved is returned but never cached.
	genMu       sync.Mutex
	generations map[int]uint64

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// resultKey identifies a cached list.
type resultKey struct {
	userID int
	n      int
	k      int
}

// EngineStats is a point-in-time view of engine counters.
type EngineStats struct {
	Requests     int64 `json:"requests"`
	Errors       int64 `json:"errors"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	CacheEntries int   `json:"cache_entries"`
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store Store, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
		store:  store,
		finder: NewNeighborFinder(store, cfg, logger),
		ranker: NewRanker(store, cfg, logger),
	}
	if cfg.Cache.Enabled {
		e.results = cache.NewLRU[resultKey, []Recommendation](cfg.Cache.MaxEntries, cfg.Cache.TTL)
		e.generations = make(map[int]uint64)
	}
	return e, nil
}

// RecommendBooks returns up to k books for userID ranked from its n nearest
// neighbors. Non-positive n and k take the configured defaults; values above
// the configured maximums fail with ErrLimitExceeded. A user without
// favorable ratings gets an empty list.
func (e *Engine) RecommendBooks(ctx context.Context, userID, n, k int) ([]Recommendation, error) {
	start := time.Now()
	e.requestCount.Add(1)
	n, k, err := e.config.resolve(n, k)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	logger := logging.CtxWith(ctx).
		Str("component", "recommend").
		Int("user_id", userID).
		Int("n", n).
		Int("k", k).
		Logger()

	key := resultKey{userID: userID, n: n, k: k}
	var gen uint64
	if e.results != nil {
		gen = e.generation(userID)
		cached, ok := e.results.Get(key)
		metrics.RecordRecommendationCache(ok)
		if ok {
			logger.Debug().Msg("recommendation cache hit")
			return copyRecommendations(cached), nil
		}
	}

	recs, err := e.compute(ctx, userID, n, k)
	metrics.RecordRecommendation(len(recs), time.Since(start), err)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if e.results != nil {
		e.cacheResult(key, gen, recs, logger)
	}

	logger.Debug().
		Int("returned", len(recs)).
		Dur("duration", time.Since(start)).
		Msg("recommendation complete")

	return copyRecommendations(recs), nil
}

// cacheResult caches recs unless userID was invalidated after gen was read.
// The check and the Add share genMu with Invalidate, so a rating that
// commits mid-compute always wins.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) cacheResult(key resultKey, gen uint64, recs []Recommendation, logger zerolog.Logger) {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	if e.generations[key.userID] != gen {
		logger.Debug().Msg("ratings changed during compute, result not cached")
		return
	}
	e.results.Add(key, recs)
	metrics.RecommendationCacheEntries.Set(float64(e.results.Len()))
}

func (e *Engine) generation(userID int) uint64 {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	return e.generations[userID]
}

func (e *Engine) compute(ctx context.Context, userID, n, k int) ([]Recommendation, error) {
	target, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !target.HasProfile() || embedding.IsZero(target.Embedding) {
		return []Recommendation{}, nil
	}

	neighbors, err := e.finder.KNearest(ctx, userID, n)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}
	scored, err := e.ranker.TopKBooks(ctx, userID, neighbors, k)
	if err != nil {
		return nil, fmt.Errorf("rank books: %w", err)
	}
	if len(scored) == 0 {
		return []Recommendation{}, nil
	}

	ids := make([]int, len(scored))
	for i, sb := range scored {
		ids[i] = sb.BookID
	}
	books, err := e.store.GetBooks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load recommended books: %w", err)
	}

	recs := make([]Recommendation, len(scored))
	for i, sb := range scored {
		recs[i] = Recommendation{Book: books[i], ScoredBook: sb}
	}
	return recs, nil
}

// Neighbors returns the n nearest neighbors of userID with the same
// default and maximum as RecommendBooks. It is not cached.
func (e *Engine) Neighbors(ctx context.Context, userID, n int) ([]Neighbor, error) {
	n, _, err := e.config.resolve(n, 0)
	if err != nil {
		return nil, err
	}
	return e.finder.KNearest(ctx, userID, n)
}

// Invalidate drops every cached list of userID. Lists of other users that
// count userID as a neighbor age out with the cache TTL.
func (e *Engine) Invalidate(userID int) {
	if e.results == nil {
		return
	}
	e.genMu.Lock()
	e.generations[userID]++
	removed := e.results.RemoveIf(func(k resultKey) bool { return k.userID == userID })
	e.genMu.Unlock()
	if removed > 0 {
		metrics.RecommendationCacheEntries.Set(float64(e.results.Len()))
		e.logger.Debug().Int("user_id", userID).Int("removed", removed).Msg("cache invalidated")
	}
}

// CleanupCache removes expired entries and returns how many were dropped.
func (e *Engine) CleanupCache() int {
	if e.results == nil {
		return 0
	}
	removed := e.results.CleanupExpired()
	metrics.RecommendationCacheEntries.Set(float64(e.results.Len()))
	return removed
}

// Stats returns the current engine counters.
func (e *Engine) Stats() EngineStats {
	s := EngineStats{
		Requests: e.requestCount.Load(),
		Errors:   e.errorCount.Load(),
	}
	if e.results != nil {
		s.CacheHits, s.CacheMisses, s.CacheEntries = e.results.Stats()
	}
	return s
}

// copyRecommendations copies the outer slice so callers may reorder it
// without touching the cached list.
func copyRecommendations(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	return out
}
