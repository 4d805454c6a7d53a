// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/models"
)

// KeywordSupport is one keyword shared by the user's liked books and the
// recommended books.
type KeywordSupport struct {
	Keyword models.Keyword `json:"keyword"`

	// LikedBookIDs are the user's liked books carrying the keyword, ascending.
	LikedBookIDs []int `json:"liked_book_ids"`

	// RecommendedBookIDs are the recommended books carrying the keyword, in
	// recommendation order.
	RecommendedBookIDs []int `json:"recommended_book_ids"`
}

// LikedCount is how many liked books support the keyword.
func (s KeywordSupport) LikedCount() int {
	return len(s.LikedBookIDs)
}

// Explanation annotates a recommendation list with shared keywords.
type Explanation struct {
	UserID int `json:"user_id"`

	// Keywords is ordered by ascending keyword ID.
	Keywords []KeywordSupport `json:"keywords"`
}

// BookKeywordCounts maps each recommended book to the total liked-book
// support over its shared keywords.
func (e *Explanation) BookKeywordCounts() map[int]int {
	counts := make(map[int]int)
	if e == nil {
		return counts
	}
	for _, kw := range e.Keywords {
		for _, bookID := range kw.RecommendedBookIDs {
			counts[bookID] += kw.LikedCount()
		}
	}
	return counts
}

// Explainer derives keyword explanations. It never changes rankings.
type Explainer struct {
	store  Store
	likes  float64
	logger zerolog.Logger
}

// NewExplainer creates an Explainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExplainer(store Store, cfg *Config, logger zerolog.Logger) *Explainer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Explainer{
		store:  store,
		likes:  cfg.Likes,
		logger: logger.With().Str("component", "explainer").Logger(),
	}
}

// XAIExplanation returns the keywords that appear both on a book userID
// likes and on one of recBookIDs, each with its supporting books.
func (x *Explainer) XAIExplanation(ctx context.Context, userID int, recBookIDs []int) (*Explanation, error) {
	expl := &Explanation{UserID: userID, Keywords: []KeywordSupport{}}
	if len(recBookIDs) == 0 {
		return expl, nil
	}

	liked, err := x.store.FavorableRatings(ctx, userID, x.likes)
	if err != nil {
		return nil, fmt.Errorf("load liked books: %w", err)
	}
	if len(liked) == 0 {
		return expl, nil
	}

	likedIDs := make([]int, len(liked))
	for i, r := range liked {
		likedIDs[i] = r.BookID
	}

	likedKeywords, err := x.store.KeywordsForBooks(ctx, likedIDs)
	if err != nil {
		return nil, fmt.Errorf("load liked keywords: %w", err)
	}
	recKeywords, err := x.store.KeywordsForBooks(ctx, recBookIDs)
	if err != nil {
		return nil, fmt.Errorf("load recommended keywords: %w", err)
	}

	// keyword ID -> liked books; liked IDs come back ascending
	support := make(map[int][]int)
	words := make(map[int]models.Keyword)
	for _, bookID := range likedIDs {
		for _, kw := range likedKeywords[bookID] {
			support[kw.ID] = append(support[kw.ID], bookID)
			words[kw.ID] = kw
		}
	}

	shared := make(map[int]*KeywordSupport)
	for _, bookID := range recBookIDs {
		for _, kw := range recKeywords[bookID] {
			likedBooks, ok := support[kw.ID]
			if !ok {
				continue
			}
			ks, ok := shared[kw.ID]
			if !ok {
				ks = &KeywordSupport{Keyword: words[kw.ID], LikedBookIDs: likedBooks}
				shared[kw.ID] = ks
			}
			if !slices.Contains(ks.RecommendedBookIDs, bookID) {
				ks.RecommendedBookIDs = append(ks.RecommendedBookIDs, bookID)
			}
		}
	}

	for _, ks := range shared {
		expl.Keywords = append(expl.Keywords, *ks)
	}
	sort.Slice(expl.Keywords, func(i, j int) bool {
		return expl.Keywords[i].Keyword.ID < expl.Keywords[j].Keyword.ID
	})

	x.logger.Debug().
		Int("user_id", userID).
		Int("liked", len(likedIDs)).
		Int("recommended", len(recBookIDs)).
		Int("shared_keywords", len(expl.Keywords)).
		Msg("explanation built")

	return expl, nil
}

// SortRecBooksByKeywordCount orders recs by descending total liked-book
// support across each book's shared keywords. Equal counts keep their
// ranking order. recs is not modified.
func SortRecBooksByKeywordCount(expl *Explanation, recs []Recommendation) []Recommendation {
	counts := expl.BookKeywordCounts()
	out := copyRecommendations(recs)
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i].BookID] > counts[out[j].BookID]
	})
	return out
}
