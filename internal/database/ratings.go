// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/xrecommender/internal/models"
)

// GetRating returns the rating of one (user, book) pair.
func (d *DB) GetRating(ctx context.Context, userID, bookID int) (models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return models.Rating{}, err
	}
	var r models.Rating
	err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, ratingKey(userID, bookID), &r, ratingNotFound(userID, bookID))
	})
	return r, err
}

// UserRatings returns all ratings of a user, ascending by book ID.
func (d *DB) UserRatings(ctx context.Context, userID int) ([]models.Rating, error) {
	var ratings []models.Rating
	err := d.db.View(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, userKey(userID))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
		}
		ratings, err = scanRatings(ctx, txn, userID, 0, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// FavorableRatings returns the ratings of a user with value >= threshold.
func (d *DB) FavorableRatings(ctx context.Context, userID int, threshold float64) ([]models.Rating, error) {
	var ratings []models.Rating
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		ratings, err = scanRatings(ctx, txn, userID, threshold, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// FavorableRatingsByUsers returns FavorableRatings for several users from a
// single snapshot. Users without favorable ratings are absent from the map.
func (d *DB) FavorableRatingsByUsers(ctx context.Context, userIDs []int, threshold float64) (map[int][]models.Rating, error) {
	result := make(map[int][]models.Rating, len(userIDs))
	err := d.db.View(func(txn *badger.Txn) error {
		for _, id := range userIDs {
			ratings, err := scanRatings(ctx, txn, id, threshold, true)
			if err != nil {
				return err
			}
			if len(ratings) > 0 {
				result[id] = ratings
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanRatings iterates the rating prefix of a user. With filter set, only
// values at or above threshold are returned.
func scanRatings(ctx context.Context, txn *badger.Txn, userID int, threshold float64, filter bool) ([]models.Rating, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = ratingPrefix(userID)
	it := txn.NewIterator(opts)
	defer it.Close()

	var ratings []models.Rating
	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := it.Item()
		var r models.Rating
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", item.Key(), err)
		}
		if filter && !r.Favorable(threshold) {
			continue
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}

// ratedBookSet returns the books a user has rated at any value.
func ratedBookSet(ctx context.Context, txn *badger.Txn, userID int) (map[int]struct{}, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	prefix := ratingPrefix(userID)
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	rated := make(map[int]struct{})
	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := idFromKey(it.Item().Key(), string(prefix))
		if err != nil {
			return nil, err
		}
		rated[id] = struct{}{}
	}
	return rated, nil
}

func ratingNotFound(userID, bookID int) error {
	return fmt.Errorf("user %d book %d: %w", userID, bookID, ErrRatingNotFound)
}
