// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/models"
)

// defaultDiscoverLimit is the page size of the discover feed.
const defaultDiscoverLimit = 20

// DiscoverResponse is one page of the books a user has not rated yet.
type DiscoverResponse struct {
	UserID int            `json:"user_id"`
	Books  []*models.Book `json:"books"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// CreateUser registers a reader with an empty taste profile.
//
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body CreateUserRequest true "Username"
// @Success 201 {object} models.APIResponse{data=models.User}
// @Failure 409 {object} models.APIResponse "Username taken"
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateUserRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	user := &models.User{Username: req.Username}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondDomainError(w, r, err, "create user")
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("user_id", user.ID).
		Str("username", sanitizeLogValue(user.Username)).
		Msg("user created")

	respondSuccess(w, http.StatusCreated, user, start, false)
}

// Discover pages through the books a user has not rated, ascending by ID.
//
// @Summary Books a user has not rated
// @Tags Users
// @Produce json
// @Param userID path int true "User ID"
// @Param limit query int false "Page size (1-100, default 20)"
// @Param offset query int false "Books to skip"
// @Success 200 {object} models.APIResponse{data=DiscoverResponse}
// @Failure 404 {object} models.APIResponse "Unknown user"
// @Router /users/{userID}/discover [get]
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	limit, err := getIntParam(r, "limit", defaultDiscoverLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	offset, err := getIntParam(r, "offset", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	req := DiscoverRequest{Limit: limit, Offset: offset}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx := r.Context()
	if _, err := h.db.GetUser(ctx, userID); err != nil {
		respondDomainError(w, r, err, "load user")
		return
	}
	unrated, err := h.db.BooksNotRatedBy(ctx, userID)
	if err != nil {
		respondDomainError(w, r, err, "list unrated books")
		return
	}

	from := min(req.Offset, len(unrated))
	to := min(from+req.Limit, len(unrated))
	books, err := h.db.GetBooks(ctx, unrated[from:to])
	if err != nil {
		respondDomainError(w, r, err, "load books")
		return
	}

	respondSuccess(w, http.StatusOK, DiscoverResponse{
		UserID: userID,
		Books:  books,
		Count:  len(books),
		Total:  len(unrated),
		Limit:  req.Limit,
		Offset: req.Offset,
	}, start, false)
}
