// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/models"
)

// sumEpsilon absorbs rounding when favorable values are retracted.
const sumEpsilon = 1e-9

// Updater applies rating mutations and keeps the user's profile in step.
// Each call runs in one store transaction; calls for the same user are
// serialized, calls for different users run in parallel.
type Updater struct {
	store  Store
	cfg    *Config
	logger zerolog.Logger
	locks  userLocks

	invMu       sync.RWMutex
	invalidator Invalidator
}

// NewUpdater creates an Updater.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUpdater(store Store, cfg *Config, logger zerolog.Logger) *Updater {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Updater{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "profile_updater").Logger(),
		locks:  userLocks{locks: make(map[int]*userLock)},
	}
}

// SetInvalidator registers the cache to notify after successful mutations.
func (u *Updater) SetInvalidator(inv Invalidator) {
	u.invMu.Lock()
	u.invalidator = inv
	u.invMu.Unlock()
}

// RatingCreated records a rating of bookID. A second create for the same
// book is an update from the stored value.
func (u *Updater) RatingCreated(ctx context.Context, userID, bookID int, value float64) error {
	_, err := u.Rate(ctx, userID, bookID, value)
	return err
}

// RatingUpdated replaces the rating of bookID. prev must equal the stored
// value; a missing rating fails with ErrMissingPriorRating.
func (u *Updater) RatingUpdated(ctx context.Context, userID, bookID int, prev, next float64) error {
	if !models.ValidRatingValue(next) {
		return fmt.Errorf("%w: got %v", ErrInvalidRating, next)
	}
	_, err := u.mutate(ctx, RatingUpdated, userID, bookID, func(tx *database.ProfileTx) (MutationKind, float64, float64, error) {
		stored, err := requireStored(tx, userID, bookID, prev)
		if err != nil {
			return RatingUpdated, 0, 0, err
		}
		if err := tx.PutRating(models.Rating{BookID: bookID, Value: next}); err != nil {
			return RatingUpdated, 0, 0, err
		}
		return RatingUpdated, stored.Value, next, nil
	})
	return err
}

// RatingDeleted removes the rating of bookID. value must equal the stored
// value.
func (u *Updater) RatingDeleted(ctx context.Context, userID, bookID int, value float64) error {
	_, err := u.mutate(ctx, RatingDeleted, userID, bookID, func(tx *database.ProfileTx) (MutationKind, float64, float64, error) {
		stored, err := requireStored(tx, userID, bookID, value)
		if err != nil {
			return RatingDeleted, 0, 0, err
		}
		if err := tx.DeleteRating(bookID); err != nil {
			return RatingDeleted, 0, 0, err
		}
		return RatingDeleted, stored.Value, 0, nil
	})
	return err
}

// Rate creates or updates the rating of bookID, capturing the prior value
// inside the same transaction. It reports which transition was applied.
func (u *Updater) Rate(ctx context.Context, userID, bookID int, value float64) (MutationKind, error) {
	if !models.ValidRatingValue(value) {
		return RatingCreated, fmt.Errorf("%w: got %v", ErrInvalidRating, value)
	}
	return u.mutate(ctx, RatingCreated, userID, bookID, func(tx *database.ProfileTx) (MutationKind, float64, float64, error) {
		prior, exists, err := tx.Rating(bookID)
		if err != nil {
			return RatingCreated, 0, 0, err
		}
		if err := tx.PutRating(models.Rating{BookID: bookID, Value: value}); err != nil {
			return RatingCreated, 0, 0, err
		}
		if exists {
			return RatingUpdated, prior.Value, value, nil
		}
		return RatingCreated, 0, value, nil
	})
}

// Unrate deletes the rating of bookID and returns it. A missing rating
// fails with database.ErrRatingNotFound.
func (u *Updater) Unrate(ctx context.Context, userID, bookID int) (models.Rating, error) {
	var removed models.Rating
	_, err := u.mutate(ctx, RatingDeleted, userID, bookID, func(tx *database.ProfileTx) (MutationKind, float64, float64, error) {
		prior, exists, err := tx.Rating(bookID)
		if err != nil {
			return RatingDeleted, 0, 0, err
		}
		if !exists {
			return RatingDeleted, 0, 0, fmt.Errorf("user %d book %d: %w", userID, bookID, database.ErrRatingNotFound)
		}
		if err := tx.DeleteRating(bookID); err != nil {
			return RatingDeleted, 0, 0, err
		}
		removed = prior
		return RatingDeleted, prior.Value, 0, nil
	})
	if err != nil {
		return models.Rating{}, err
	}
	return removed, nil
}

// step performs the rating write inside the transaction and reports the
// transition with its prior and new values.
type step func(tx *database.ProfileTx) (kind MutationKind, prev, next float64, err error)

func (u *Updater) mutate(ctx context.Context, requested MutationKind, userID, bookID int, fn step) (MutationKind, error) {
	start := time.Now()
	kind := requested

	unlock := u.locks.lock(userID)
	err := u.store.UpdateProfile(ctx, userID, func(tx *database.ProfileTx) error {
		k, prev, next, err := fn(tx)
		if err != nil {
			return err
		}
		kind = k
		return foldRating(tx, bookID, transitionWeight(k, prev, next, u.cfg.Likes))
	})
	unlock()

	metrics.RecordRatingMutation(kind.String(), time.Since(start), err)

	logger := u.logger.With().
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Int("user_id", userID).
		Int("book_id", bookID).
		Str("kind", kind.String()).
		Logger()
	if err != nil {
		logger.Debug().Err(err).Msg("rating mutation rejected")
		return kind, err
	}
	logger.Debug().Dur("duration", time.Since(start)).Msg("rating mutation applied")

	u.notify(userID)
	return kind, nil
}

func (u *Updater) notify(userID int) {
	u.invMu.RLock()
	inv := u.invalidator
	u.invMu.RUnlock()
	if inv != nil {
		inv.Invalidate(userID)
	}
}

func requireStored(tx *database.ProfileTx, userID, bookID int, want float64) (models.Rating, error) {
	stored, exists, err := tx.Rating(bookID)
	if err != nil {
		return models.Rating{}, err
	}
	if !exists {
		return models.Rating{}, fmt.Errorf("user %d book %d: %w", userID, bookID, ErrMissingPriorRating)
	}
	if stored.Value != want {
		return models.Rating{}, fmt.Errorf("user %d book %d: stored %v, given %v: %w",
			userID, bookID, stored.Value, want, ErrPriorRatingMismatch)
	}
	return stored, nil
}

// contribution is the weight a rating value carries in a profile.
func contribution(value, likes float64) float64 {
	if value >= likes {
		return value
	}
	return 0
}

// transitionWeight is the signed weight a transition adds to SumRatings;
// the running sum moves by the same weight times the book embedding.
//
//	created(v):      c(v)
//	updated(p -> v): c(v) - c(p)
//	deleted(p):      -c(p)
//
// where c(x) is x for favorable values and 0 otherwise. This covers all
// four update cases: below/below is 0, below/above is v, above/below is -p,
// above/above is v-p.
func transitionWeight(kind MutationKind, prev, next, likes float64) float64 {
	switch kind {
	case RatingCreated:
		return contribution(next, likes)
	case RatingUpdated:
		return contribution(next, likes) - contribution(prev, likes)
	case RatingDeleted:
		return -contribution(prev, likes)
	default:
		return 0
	}
}

// foldRating moves the profile by weight times the embedding of bookID.
// A zero weight leaves the profile untouched.
func foldRating(tx *database.ProfileTx, bookID int, weight float64) error {
	if weight == 0 {
		return nil
	}
	user := tx.User()
	acc, err := tx.Accumulator()
	if err != nil {
		return err
	}
	bookEmb, err := tx.BookEmbedding(bookID)
	if err != nil {
		return err
	}
	if err := bookEmb.CheckDim(acc.Dim()); err != nil {
		return fmt.Errorf("book %d: %w", bookID, err)
	}

	embedding.AddScaled(acc, weight, bookEmb)
	emb, acc, sum := settleProfile(acc, user.SumRatings+weight)
	return tx.SaveProfile(emb, acc, sum)
}

// settleProfile derives the stored profile from a running sum and its
// weight. A zero weight collapses both vectors to zero; otherwise the
// embedding is acc/sum scaled to unit length when its norm is nonzero.
func settleProfile(acc embedding.Vector, sum float64) (emb, running embedding.Vector, total float64) {
	if math.Abs(sum) < sumEpsilon {
		return embedding.Zero(acc.Dim()), embedding.Zero(acc.Dim()), 0
	}
	emb = acc.Clone()
	for i := range emb {
		emb[i] /= sum
	}
	embedding.Normalize(emb)
	return emb, acc, sum
}

// userLocks hands out one mutex per user ID and forgets it once unused.
type userLocks struct {
	mu    sync.Mutex
	locks map[int]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until userID is free and returns the matching unlock.
func (l *userLocks) lock(userID int) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
