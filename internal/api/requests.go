// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

// Request structs carry go-playground/validator tags and are checked with
// validateRequest before any store access.
//
//	req := NeighborsRequest{N: n}
//	if apiErr := validateRequest(&req); apiErr != nil {
//	    respondAPIError(w, http.StatusBadRequest, apiErr)
//	    return
//	}

// RateRequest is the body of PUT /users/{userID}/ratings/{bookID}.
// Rating is a pointer so a missing field is distinguishable from 0.
type RateRequest struct {
	Rating *float64 `json:"rating" validate:"required,rating_value"`
}

// NeighborsRequest holds the query of GET /users/{userID}/neighbors.
// Zero selects the configured default; values above the configured
// maximum are rejected by the engine.
type NeighborsRequest struct {
	N int `validate:"min=0,max=100000"`
}

// RecommendationsRequest holds the query of the recommendation endpoints.
type RecommendationsRequest struct {
	N int `validate:"min=0,max=100000"`
	K int `validate:"min=0,max=100000"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,excludesall=/:?#"`
}

// CreateBookRequest is the body of POST /books. Embedding must have the
// configured dimension; keywords are created on first use.
type CreateBookRequest struct {
	Title       string    `json:"title" validate:"required,max=500"`
	Authors     []string  `json:"authors" validate:"max=20,dive,required,max=200"`
	Year        int       `json:"year" validate:"min=0,max=9999"`
	ISBN        string    `json:"isbn" validate:"omitempty,max=20"`
	Cover       string    `json:"cover" validate:"omitempty,url,max=2048"`
	Description string    `json:"description" validate:"max=10000"`
	Embedding   []float64 `json:"embedding" validate:"required,min=1"`
	Keywords    []string  `json:"keywords" validate:"max=100,dive,required,max=100"`
}

// AttachKeywordsRequest is the body of POST /books/{bookID}/keywords.
type AttachKeywordsRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1,max=100,dive,required,max=100"`
}

// DiscoverRequest holds the query of GET /users/{userID}/discover.
type DiscoverRequest struct {
	Limit  int `validate:"min=1,max=100"`
	Offset int `validate:"min=0"`
}
