// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrNotFound is wrapped by every lookup miss.
	ErrNotFound = errors.New("not found")

	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrBookNotFound    = fmt.Errorf("book %w", ErrNotFound)
	ErrKeywordNotFound = fmt.Errorf("keyword %w", ErrNotFound)
	ErrRatingNotFound  = fmt.Errorf("rating %w", ErrNotFound)

	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidID     = errors.New("invalid id")
	ErrEmptyKeyword  = errors.New("keyword text is empty")
)
