// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Ranker turns a neighbor set into scored books.
type Ranker struct {
	store  Store
	likes  float64
	logger zerolog.Logger
}

// NewRanker creates a Ranker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRanker(store Store, cfg *Config, logger zerolog.Logger) *Ranker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Ranker{
		store:  store,
		likes:  cfg.Likes,
		logger: logger.With().Str("component", "ranker").Logger(),
	}
}

// TopKBooks scores every book a neighbor likes as the sum of
// rating*similarity over those neighbors, drops books userID has rated at
// any value, and returns the k best. Ties are broken by ascending book ID.
// Books scoring zero or below are kept and only fill what is left of k.
func (r *Ranker) TopKBooks(ctx context.Context, userID int, neighbors []Neighbor, k int) ([]ScoredBook, error) {
	if k <= 0 || len(neighbors) == 0 {
		return []ScoredBook{}, nil
	}

	read, err := r.readSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		if n.UserID == userID {
			continue
		}
		ids = append(ids, n.UserID)
	}
	liked, err := r.store.FavorableRatingsByUsers(ctx, ids, r.likes)
	if err != nil {
		return nil, fmt.Errorf("load neighbor ratings: %w", err)
	}

	// Neighbors are walked in their given order so contribution lists and
	// float summation are reproducible.
	byBook := make(map[int]*ScoredBook)
	for _, n := range neighbors {
		if n.UserID == userID {
			continue
		}
		for _, rating := range liked[n.UserID] {
			if _, ok := read[rating.BookID]; ok {
				continue
			}
			sb, ok := byBook[rating.BookID]
			if !ok {
				sb = &ScoredBook{BookID: rating.BookID}
				byBook[rating.BookID] = sb
			}
			value := rating.Value * n.Similarity
			sb.Score += value
			sb.Contributions = append(sb.Contributions, Contribution{
				NeighborID: n.UserID,
				Similarity: n.Similarity,
				Rating:     rating.Value,
				Value:      value,
			})
		}
	}

	scored := make([]ScoredBook, 0, len(byBook))
	for _, sb := range byBook {
		scored = append(scored, *sb)
	}
	sortScoredBooks(scored)
	if len(scored) > k {
		scored = scored[:k]
	}

	r.logger.Debug().
		Int("user_id", userID).
		Int("neighbors", len(neighbors)).
		Int("candidates", len(byBook)).
		Int("returned", len(scored)).
		Msg("ranked books")

	return scored, nil
}

func (r *Ranker) readSet(ctx context.Context, userID int) (map[int]struct{}, error) {
	ratings, err := r.store.UserRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load target ratings: %w", err)
	}
	read := make(map[int]struct{}, len(ratings))
	for _, rating := range ratings {
		read[rating.BookID] = struct{}{}
	}
	return read, nil
}

func sortScoredBooks(books []ScoredBook) {
	sort.Slice(books, func(i, j int) bool {
		if books[i].Score != books[j].Score {
			return books[i].Score > books[j].Score
		}
		return books[i].BookID < books[j].BookID
	})
}
