// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"errors"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/models"
)

// Errors
var (
	// ErrMissingPriorRating is returned when an update or delete names a
	// rating that does not exist.
	ErrMissingPriorRating = errors.New("missing prior rating")

	// ErrPriorRatingMismatch is returned when the caller's prior value does
	// not match the stored rating.
	ErrPriorRatingMismatch = errors.New("prior rating does not match stored value")

	// ErrInvalidRating is returned for values off the rating scale.
	ErrInvalidRating = errors.New("rating must be one of 0, 0.25, 0.5, 0.75, 1")

	// ErrLimitExceeded is returned when n or k is above its configured
	// maximum. Requests are rejected rather than silently truncated.
	ErrLimitExceeded = errors.New("request exceeds configured limit")
)

// MutationKind names a rating transition.
type MutationKind int

const (
	// RatingCreated is a first rating of a book.
	RatingCreated MutationKind = iota
	// RatingUpdated replaces an existing rating.
	RatingUpdated
	// RatingDeleted removes an existing rating.
	RatingDeleted
)

// String returns the metric label for the transition.
func (k MutationKind) String() string {
	switch k {
	case RatingCreated:
		return "created"
	case RatingUpdated:
		return "updated"
	case RatingDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Neighbor is a user scored against a target.
type Neighbor struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// Contribution is one neighbor's share of a book score.
type Contribution struct {
	NeighborID int     `json:"neighbor_id"`
	Similarity float64 `json:"similarity"`
	Rating     float64 `json:"rating"`
	Value      float64 `json:"value"`
}

// ScoredBook is a candidate book with its aggregated score.
type ScoredBook struct {
	BookID        int            `json:"book_id"`
	Score         float64        `json:"score"`
	Contributions []Contribution `json:"contributions"`
}

// Recommendation is a scored book with its catalogue record.
type Recommendation struct {
	Book *models.Book `json:"book"`
	ScoredBook
}

// Store is the persistence the recommender needs. *database.DB satisfies it.
type Store interface {
	UpdateProfile(ctx context.Context, userID int, fn func(tx *database.ProfileTx) error) error
	ViewProfile(ctx context.Context, userID int, fn func(tx *database.ProfileTx) error) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	UserIDs(ctx context.Context) ([]int, error)
	ListUsersExcept(ctx context.Context, exclude int) ([]*models.User, error)
	UserRatings(ctx context.Context, userID int) ([]models.Rating, error)
	FavorableRatings(ctx context.Context, userID int, threshold float64) ([]models.Rating, error)
	FavorableRatingsByUsers(ctx context.Context, userIDs []int, threshold float64) (map[int][]models.Rating, error)
	GetBooks(ctx context.Context, ids []int) ([]*models.Book, error)
	KeywordsForBooks(ctx context.Context, bookIDs []int) (map[int][]models.Keyword, error)
}

// Invalidator drops cached results that depend on a user's ratings.
type Invalidator interface {
	Invalidate(userID int)
}
