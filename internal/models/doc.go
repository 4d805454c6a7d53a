// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package models defines the data structures shared across Xrecommender.

Key Components:

  - User: a reader with a taste profile (embedding plus SumRatings weight)
  - Book: catalogue entry with its fixed content embedding and keywords
  - Keyword: label attached to books, unique by text
  - Rating: one user's value for one book on the 0.25 grid in [0, 1]
  - APIResponse: standardized HTTP response wrapper

Ratings at or above LikesThreshold are favorable ("likes"); only favorable
ratings contribute to a user's profile and to recommendation scores.
*/
package models
