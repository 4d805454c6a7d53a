// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package models

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/xrecommender/internal/embedding"
)

// LikesThreshold is the minimum rating value that counts as a like.
const LikesThreshold = 0.75

// RatingStep is the granularity of the rating scale.
const RatingStep = 0.25

// User is a reader and their taste profile.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`

	// Embedding is the L2-normalized, rating-weighted mean of the embeddings
	// of the books the user likes. Zero when SumRatings is zero.
	Embedding embedding.Vector `json:"-"`

	// SumRatings is the total of the favorable rating values folded into
	// Embedding.
	SumRatings float64 `json:"sum_ratings"`

	CreatedAt time.Time `json:"created_at"`
}

// HasProfile reports whether any favorable signal has been recorded.
func (u *User) HasProfile() bool {
	return u.SumRatings != 0
}

// Book is a catalogue entry.
type Book struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors,omitempty"`
	Year        int      `json:"year"`
	ISBN        string   `json:"isbn,omitempty"`
	Cover       string   `json:"cover,omitempty"`
	Description string   `json:"description,omitempty"`

	// KeywordIDs lists the keywords attached to the book, ascending.
	KeywordIDs []int `json:"keyword_ids,omitempty"`

	// Embedding is fixed at creation and never changed by the recommender.
	Embedding embedding.Vector `json:"-"`
}

// Keyword is a label attached to zero or more books.
type Keyword struct {
	ID   int    `json:"id"`
	Word string `json:"word"`
}

// Rating is a user's value for a book. There is at most one per pair.
type Rating struct {
	UserID    int       `json:"user_id"`
	BookID    int       `json:"book_id"`
	Value     float64   `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Favorable reports whether the rating counts as a like under threshold,
// normally the configured recommend.likes.
func (r Rating) Favorable(threshold float64) bool {
	return r.Value >= threshold
}

// ValidRatingValue reports whether value is on the rating scale
// {0, 0.25, 0.5, 0.75, 1}.
func ValidRatingValue(value float64) bool {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return false
	}
	steps := value / RatingStep
	return steps == math.Trunc(steps)
}

// String implements fmt.Stringer.
func (r Rating) String() string {
	return fmt.Sprintf("user %d - book %d - %.2f", r.UserID, r.BookID, r.Value)
}
