// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/xrecommender/internal/models"
	"github.com/tomtom215/xrecommender/internal/recommend"
)

// NeighborsResponse lists the nearest neighbors of a user.
type NeighborsResponse struct {
	UserID    int                  `json:"user_id"`
	Neighbors []recommend.Neighbor `json:"neighbors"`
	Count     int                  `json:"count"`
}

// RecommendedBook is a ranked book with the liked-book support of its
// shared keywords.
type RecommendedBook struct {
	recommend.Recommendation
	KeywordCount int `json:"keyword_count"`
}

// RecommendationsResponse is the recommendation list ordered by keyword
// count, with the explanation it was ordered by.
type RecommendationsResponse struct {
	UserID          int                    `json:"user_id"`
	Recommendations []RecommendedBook      `json:"recommendations"`
	Count           int                    `json:"count"`
	Explanation     *recommend.Explanation `json:"explanation"`
}

// Neighbors returns the users closest to userID by cosine similarity.
//
// @Summary Nearest neighbors of a user
// @Tags Recommendations
// @Produce json
// @Param userID path int true "User ID"
// @Param n query int false "Number of neighbors (default from config)"
// @Success 200 {object} models.APIResponse{data=NeighborsResponse}
// @Router /users/{userID}/neighbors [get]
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	n, err := getIntParam(r, "n", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	req := NeighborsRequest{N: n}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	neighbors, err := h.engine.Neighbors(r.Context(), userID, req.N)
	if err != nil {
		respondDomainError(w, r, err, "find neighbors")
		return
	}
	if neighbors == nil {
		neighbors = []recommend.Neighbor{}
	}

	respondSuccess(w, http.StatusOK, NeighborsResponse{
		UserID:    userID,
		Neighbors: neighbors,
		Count:     len(neighbors),
	}, start, false)
}

// Recommendations returns up to k books ranked from the user's n nearest
// neighbors, reordered by how many liked books share their keywords.
//
// @Summary Explained recommendations for a user
// @Tags Recommendations
// @Produce json
// @Param userID path int true "User ID"
// @Param n query int false "Neighbors to rank from (default 35)"
// @Param k query int false "Books to return (default 5)"
// @Success 200 {object} models.APIResponse{data=RecommendationsResponse}
// @Router /users/{userID}/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, req, ok := recommendationParams(w, r)
	if !ok {
		return
	}

	recs, expl, err := h.explainedRecommendations(r.Context(), userID, req)
	if err != nil {
		respondDomainError(w, r, err, "recommend books")
		return
	}

	counts := expl.BookKeywordCounts()
	items := make([]RecommendedBook, 0, len(recs))
	for _, rec := range recs {
		items = append(items, RecommendedBook{Recommendation: rec, KeywordCount: counts[rec.BookID]})
	}

	respondSuccess(w, http.StatusOK, RecommendationsResponse{
		UserID:          userID,
		Recommendations: items,
		Count:           len(items),
		Explanation:     expl,
	}, start, false)
}

// RecommendationGraph returns the explanation of the same list as a
// keyword to book graph.
//
// @Summary Explanation graph for a user's recommendations
// @Tags Recommendations
// @Produce json
// @Param userID path int true "User ID"
// @Param n query int false "Neighbors to rank from"
// @Param k query int false "Books to return"
// @Success 200 {object} models.APIResponse{data=recommend.Graph}
// @Router /users/{userID}/recommendations/graph [get]
func (h *Handler) RecommendationGraph(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, req, ok := recommendationParams(w, r)
	if !ok {
		return
	}

	recs, expl, err := h.explainedRecommendations(r.Context(), userID, req)
	if err != nil {
		respondDomainError(w, r, err, "build explanation graph")
		return
	}

	books := make([]*models.Book, 0, len(recs))
	for _, rec := range recs {
		books = append(books, rec.Book)
	}

	respondSuccess(w, http.StatusOK, recommend.BuildGraph(expl, books), start, false)
}

// explainedRecommendations ranks, explains and reorders by keyword count.
func (h *Handler) explainedRecommendations(ctx context.Context, userID int, req RecommendationsRequest) ([]recommend.Recommendation, *recommend.Explanation, error) {
	recs, err := h.engine.RecommendBooks(ctx, userID, req.N, req.K)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.BookID)
	}

	expl, err := h.explainer.XAIExplanation(ctx, userID, ids)
	if err != nil {
		return nil, nil, err
	}

	return recommend.SortRecBooksByKeywordCount(expl, recs), expl, nil
}

func recommendationParams(w http.ResponseWriter, r *http.Request) (int, RecommendationsRequest, bool) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return 0, RecommendationsRequest{}, false
	}

	n, err := getIntParam(r, "n", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return 0, RecommendationsRequest{}, false
	}
	k, err := getIntParam(r, "k", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return 0, RecommendationsRequest{}, false
	}

	req := RecommendationsRequest{N: n, K: k}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return 0, RecommendationsRequest{}, false
	}
	return userID, req, true
}
