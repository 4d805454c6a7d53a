// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/models"
)

// NeighborFinder ranks every other user by cosine similarity to a target.
type NeighborFinder struct {
	store   Store
	workers int
	logger  zerolog.Logger
}

// NewNeighborFinder creates a NeighborFinder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNeighborFinder(store Store, cfg *Config, logger zerolog.Logger) *NeighborFinder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &NeighborFinder{
		store:   store,
		workers: workers,
		logger:  logger.With().Str("component", "neighbor_finder").Logger(),
	}
}

// KNearest returns at most n users ordered by similarity to userID,
// descending, ties broken by ascending user ID. The target is never in its
// own result. Zero embeddings have similarity 0 with everyone, so fewer than
// n neighbors come back only when fewer than n other users exist.
func (f *NeighborFinder) KNearest(ctx context.Context, userID, n int) ([]Neighbor, error) {
	if n <= 0 {
		return []Neighbor{}, nil
	}
	start := time.Now()

	target, err := f.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load target user: %w", err)
	}
	others, err := f.store.ListUsersExcept(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	scored, err := f.score(ctx, target.Embedding, others)
	if err != nil {
		return nil, err
	}
	sortNeighbors(scored)
	if len(scored) > n {
		scored = scored[:n]
	}

	metrics.RecordNeighborScan(len(others), time.Since(start))
	f.logger.Debug().
		Int("user_id", userID).
		Int("candidates", len(others)).
		Int("returned", len(scored)).
		Dur("duration", time.Since(start)).
		Msg("neighbor scan complete")

	return scored, nil
}

// score computes similarities in parallel. Each worker owns a contiguous
// index range of the output, so no locking is needed on the slice.
func (f *NeighborFinder) score(ctx context.Context, target embedding.Vector, others []*models.User) ([]Neighbor, error) {
	out := make([]Neighbor, len(others))
	if len(others) == 0 {
		return out, nil
	}

	workers := f.workers
	if workers > len(others) {
		workers = len(others)
	}
	chunkSize := (len(others) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(others); start += chunkSize {
		end := start + chunkSize
		if end > len(others) {
			end = len(others)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				u := others[i]
				out[i] = Neighbor{
					UserID:     u.ID,
					Similarity: embedding.Cosine(target, u.Embedding),
				}
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Similarity != ns[j].Similarity {
			return ns[i].Similarity > ns[j].Similarity
		}
		return ns[i].UserID < ns[j].UserID
	})
}
