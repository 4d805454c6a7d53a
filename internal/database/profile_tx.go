// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/models"
)

// ErrReadOnlyProfile is returned by ProfileTx writes inside ViewProfile.
var ErrReadOnlyProfile = errors.New("profile transaction is read-only")

// ProfileTx is the view of one user inside a profile transaction.
// It must not be used after the callback returns.
type ProfileTx struct {
	ctx      context.Context
	db       *DB
	txn      *badger.Txn
	user     *models.User
	readOnly bool
}

// UpdateProfile runs fn inside one read-write transaction scoped to userID.
// Rating writes and the profile rewrite made through tx commit together or
// not at all. A non-nil error from fn discards every write.
func (d *DB) UpdateProfile(ctx context.Context, userID int, fn func(tx *ProfileTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := d.db.Update(func(txn *badger.Txn) error {
		tx, err := d.newProfileTx(ctx, txn, userID, false)
		if err != nil {
			return err
		}
		return fn(tx)
	})
	metrics.RecordDBOperation("update_profile", time.Since(start), err)
	return err
}

// ViewProfile runs fn against a read-only snapshot of userID.
func (d *DB) ViewProfile(ctx context.Context, userID int, fn func(tx *ProfileTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.View(func(txn *badger.Txn) error {
		tx, err := d.newProfileTx(ctx, txn, userID, true)
		if err != nil {
			return err
		}
		return fn(tx)
	})
}

func (d *DB) newProfileTx(ctx context.Context, txn *badger.Txn, userID int, readOnly bool) (*ProfileTx, error) {
	u, err := d.loadUser(txn, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileTx{ctx: ctx, db: d, txn: txn, user: u, readOnly: readOnly}, nil
}

// Dimension is the embedding length of the store.
func (tx *ProfileTx) Dimension() int {
	return tx.db.dim
}

// User returns a copy of the user as of the last SaveProfile.
func (tx *ProfileTx) User() models.User {
	u := *tx.user
	u.Embedding = tx.user.Embedding.Clone()
	return u
}

// Accumulator returns the unnormalized running sum behind the taste vector.
// When none is stored it is recovered as SumRatings times the embedding.
func (tx *ProfileTx) Accumulator() (embedding.Vector, error) {
	acc, ok, err := tx.db.getVector(tx.txn, userAccKey(tx.user.ID))
	if err != nil {
		return nil, err
	}
	if ok {
		return acc, nil
	}
	acc = tx.user.Embedding.Clone()
	embedding.Scale(acc, tx.user.SumRatings)
	return acc, nil
}

// Rating returns the user's rating of bookID; ok is false when there is none.
func (tx *ProfileTx) Rating(bookID int) (r models.Rating, ok bool, err error) {
	err = getJSON(tx.txn, ratingKey(tx.user.ID, bookID), &r, ratingNotFound(tx.user.ID, bookID))
	if errors.Is(err, ErrRatingNotFound) {
		return models.Rating{}, false, nil
	}
	if err != nil {
		return models.Rating{}, false, err
	}
	return r, true, nil
}

// Ratings returns every rating of the user, ascending by book ID.
func (tx *ProfileTx) Ratings() ([]models.Rating, error) {
	return scanRatings(tx.ctx, tx.txn, tx.user.ID, 0, false)
}

// PutRating creates or replaces the rating of r.BookID. The book must exist.
func (tx *ProfileTx) PutRating(r models.Rating) error {
	if tx.readOnly {
		return ErrReadOnlyProfile
	}
	exists, err := keyExists(tx.txn, bookKey(r.BookID))
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("book %d: %w", r.BookID, ErrBookNotFound)
	}
	r.UserID = tx.user.ID
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	return setJSON(tx.txn, ratingKey(r.UserID, r.BookID), &r)
}

// DeleteRating removes the rating of bookID.
func (tx *ProfileTx) DeleteRating(bookID int) error {
	if tx.readOnly {
		return ErrReadOnlyProfile
	}
	key := ratingKey(tx.user.ID, bookID)
	exists, err := keyExists(tx.txn, key)
	if err != nil {
		return err
	}
	if !exists {
		return ratingNotFound(tx.user.ID, bookID)
	}
	if err := tx.txn.Delete(key); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

// BookEmbedding returns the embedding of bookID.
func (tx *ProfileTx) BookEmbedding(bookID int) (embedding.Vector, error) {
	return tx.db.bookEmbedding(tx.txn, bookID)
}

// SaveProfile persists the taste vector, its running sum and SumRatings.
func (tx *ProfileTx) SaveProfile(emb, acc embedding.Vector, sum float64) error {
	if tx.readOnly {
		return ErrReadOnlyProfile
	}
	id := tx.user.ID
	if err := tx.db.setVector(tx.txn, userEmbKey(id), emb); err != nil {
		return err
	}
	if err := tx.db.setVector(tx.txn, userAccKey(id), acc); err != nil {
		return err
	}
	u := *tx.user
	u.SumRatings = sum
	if err := setJSON(tx.txn, userKey(id), &u); err != nil {
		return err
	}
	u.Embedding = emb.Clone()
	tx.user = &u
	return nil
}
