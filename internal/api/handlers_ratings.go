// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/models"
	"github.com/tomtom215/xrecommender/internal/recommend"
)

// RatingsResponse lists a user's ratings.
type RatingsResponse struct {
	UserID  int             `json:"user_id"`
	Ratings []models.Rating `json:"ratings"`
	Count   int             `json:"count"`
}

// RatingMutationResponse reports the stored (or removed) rating and the
// transition that was applied to the profile.
type RatingMutationResponse struct {
	Rating   models.Rating `json:"rating"`
	Mutation string        `json:"mutation"`
}

// ListRatings returns every rating of a user, ascending by book ID.
//
// @Summary List a user's ratings
// @Tags Ratings
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} models.APIResponse{data=RatingsResponse}
// @Router /users/{userID}/ratings [get]
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}

	ratings, err := h.db.UserRatings(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err, "list ratings")
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}

	respondSuccess(w, http.StatusOK, RatingsResponse{
		UserID:  userID,
		Ratings: ratings,
		Count:   len(ratings),
	}, start, false)
}

// PutRating creates or replaces a rating and folds it into the profile.
// Responds 201 for a first rating and 200 for a replacement.
//
// @Summary Rate a book
// @Tags Ratings
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param bookID path int true "Book ID"
// @Param body body RateRequest true "Rating on the 0.25 grid in [0, 1]"
// @Success 200 {object} models.APIResponse{data=RatingMutationResponse}
// @Success 201 {object} models.APIResponse{data=RatingMutationResponse}
// @Router /users/{userID}/ratings/{bookID} [put]
func (h *Handler) PutRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, bookID, ok := ratingPathIDs(w, r)
	if !ok {
		return
	}

	var req RateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	kind, err := h.updater.Rate(r.Context(), userID, bookID, *req.Rating)
	if err != nil {
		respondDomainError(w, r, err, "rate book")
		return
	}

	stored, err := h.db.GetRating(r.Context(), userID, bookID)
	if err != nil {
		respondDomainError(w, r, err, "load rating")
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int("user_id", userID).
		Int("book_id", bookID).
		Float64("rating", stored.Value).
		Str("mutation", kind.String()).
		Msg("rating stored")

	status := http.StatusOK
	if kind == recommend.RatingCreated {
		status = http.StatusCreated
	}
	respondSuccess(w, status, RatingMutationResponse{Rating: stored, Mutation: kind.String()}, start, false)
}

// DeleteRating removes a rating and unfolds it from the profile.
//
// @Summary Remove a rating
// @Tags Ratings
// @Produce json
// @Param userID path int true "User ID"
// @Param bookID path int true "Book ID"
// @Success 200 {object} models.APIResponse{data=RatingMutationResponse}
// @Failure 404 {object} models.APIResponse "No such rating"
// @Router /users/{userID}/ratings/{bookID} [delete]
func (h *Handler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, bookID, ok := ratingPathIDs(w, r)
	if !ok {
		return
	}

	removed, err := h.updater.Unrate(r.Context(), userID, bookID)
	if err != nil {
		respondDomainError(w, r, err, "remove rating")
		return
	}

	respondSuccess(w, http.StatusOK, RatingMutationResponse{
		Rating:   removed,
		Mutation: recommend.RatingDeleted.String(),
	}, start, false)
}

func ratingPathIDs(w http.ResponseWriter, r *http.Request) (userID, bookID int, ok bool) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return 0, 0, false
	}
	bookID, err = parseIDParam(r, "bookID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return 0, 0, false
	}
	return userID, bookID, true
}
