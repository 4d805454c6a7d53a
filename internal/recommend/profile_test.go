// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/models"
)

func TestTransitionWeight(t *testing.T) {
	tests := []struct {
		name       string
		kind       MutationKind
		prev, next float64
		want       float64
	}{
		{"created below threshold", RatingCreated, 0, 0.5, 0},
		{"created at threshold", RatingCreated, 0, 0.75, 0.75},
		{"created one ulp below threshold", RatingCreated, 0, math.Nextafter(0.75, 0), 0},
		{"updated to one ulp below threshold", RatingUpdated, 1, math.Nextafter(0.75, 0), -1},
		{"created above threshold", RatingCreated, 0, 1, 1},
		{"updated both below", RatingUpdated, 0.25, 0.5, 0},
		{"updated below to above", RatingUpdated, 0.5, 1, 1},
		{"updated above to below", RatingUpdated, 0.75, 0.25, -0.75},
		{"updated both above", RatingUpdated, 0.75, 1, 0.25},
		{"updated same favorable value", RatingUpdated, 1, 1, 0},
		{"deleted below threshold", RatingDeleted, 0.5, 0, 0},
		{"deleted favorable", RatingDeleted, 1, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transitionWeight(tt.kind, tt.prev, tt.next, models.LikesThreshold)
			if got != tt.want {
				t.Errorf("transitionWeight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettleProfile(t *testing.T) {
	t.Run("zero sum collapses residual noise", func(t *testing.T) {
		emb, acc, sum := settleProfile(embedding.Vector{1e-17, -2e-17, 0}, 1e-12)
		if sum != 0 {
			t.Errorf("sum = %v, want 0", sum)
		}
		if !embedding.IsZero(emb) || !embedding.IsZero(acc) {
			t.Errorf("emb = %v, acc = %v, want zero vectors", emb, acc)
		}
	})

	t.Run("nonzero sum normalizes", func(t *testing.T) {
		emb, acc, sum := settleProfile(embedding.Vector{3, 4, 0}, 1.75)
		if sum != 1.75 {
			t.Errorf("sum = %v, want 1.75", sum)
		}
		assertVector(t, emb, embedding.Vector{0.6, 0.8, 0})
		assertVector(t, acc, embedding.Vector{3, 4, 0})
	})
}

func TestUpdater_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)

	user := createUser(t, db, "alice")
	x := createBook(t, db, "x", embedding.Vector{1, 0, 0})
	y := createBook(t, db, "y", embedding.Vector{0, 1, 0})

	if err := u.RatingCreated(ctx, user.ID, x.ID, 0.5); err != nil {
		t.Fatalf("RatingCreated() error = %v", err)
	}
	assertProfile(t, getUser(t, db, user.ID), embedding.Zero(testDim), 0)

	if err := u.RatingUpdated(ctx, user.ID, x.ID, 0.5, 1); err != nil {
		t.Fatalf("RatingUpdated() error = %v", err)
	}
	assertProfile(t, getUser(t, db, user.ID), embedding.Vector{1, 0, 0}, 1)

	if err := u.RatingCreated(ctx, user.ID, y.ID, 0.75); err != nil {
		t.Fatalf("RatingCreated() error = %v", err)
	}
	want, wantSum := expectedProfile(map[*models.Book]float64{x: 1, y: 0.75})
	assertProfile(t, getUser(t, db, user.ID), want, wantSum)

	if err := u.RatingUpdated(ctx, user.ID, x.ID, 1, 0.25); err != nil {
		t.Fatalf("RatingUpdated() error = %v", err)
	}
	assertProfile(t, getUser(t, db, user.ID), embedding.Vector{0, 1, 0}, 0.75)

	if err := u.RatingDeleted(ctx, user.ID, y.ID, 0.75); err != nil {
		t.Fatalf("RatingDeleted() error = %v", err)
	}
	assertProfile(t, getUser(t, db, user.ID), embedding.Zero(testDim), 0)

	r, err := db.GetRating(ctx, user.ID, x.ID)
	if err != nil {
		t.Fatalf("GetRating() error = %v", err)
	}
	if r.Value != 0.25 {
		t.Errorf("stored rating = %v, want 0.25", r.Value)
	}
}

func TestUpdater_SingleLikeThenDeleteReturnsToZero(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)

	user := createUser(t, db, "bob")
	x := createBook(t, db, "x", embedding.Vector{0.3, -0.2, 0.9})

	if err := u.RatingCreated(ctx, user.ID, x.ID, 0.75); err != nil {
		t.Fatalf("RatingCreated() error = %v", err)
	}
	if got := getUser(t, db, user.ID); got.SumRatings != 0.75 {
		t.Fatalf("SumRatings = %v, want 0.75", got.SumRatings)
	}

	if err := u.RatingDeleted(ctx, user.ID, x.ID, 0.75); err != nil {
		t.Fatalf("RatingDeleted() error = %v", err)
	}
	got := getUser(t, db, user.ID)
	if got.SumRatings != 0 {
		t.Errorf("SumRatings = %v, want 0", got.SumRatings)
	}
	if !embedding.IsZero(got.Embedding) {
		t.Errorf("Embedding = %v, want zero vector", got.Embedding)
	}
}

func TestUpdater_CreateThenDeleteRestoresPriorProfile(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)

	user := createUser(t, db, "carol")
	a := createBook(t, db, "a", embedding.Vector{0.9, 0.1, 0})
	b := createBook(t, db, "b", embedding.Vector{0, 0.4, 0.6})
	x := createBook(t, db, "x", embedding.Vector{0.3, -0.2, 0.9})

	mustRate(t, u, user.ID, a.ID, 1)
	mustRate(t, u, user.ID, b.ID, 0.75)
	before := getUser(t, db, user.ID)

	for _, v := range []float64{0.75, 1, 0.5} {
		if err := u.RatingCreated(ctx, user.ID, x.ID, v); err != nil {
			t.Fatalf("RatingCreated(%v) error = %v", v, err)
		}
		if err := u.RatingDeleted(ctx, user.ID, x.ID, v); err != nil {
			t.Fatalf("RatingDeleted(%v) error = %v", v, err)
		}
		assertProfile(t, getUser(t, db, user.ID), before.Embedding, before.SumRatings)
	}
}

func TestUpdater_OrderIndependent(t *testing.T) {
	ratings := []struct {
		book  int
		value float64
	}{
		{0, 1}, {1, 0.75}, {2, 0.25}, {3, 1}, {4, 0.75},
	}
	vectors := []embedding.Vector{
		{1, 0, 0}, {0.2, 0.7, 0.1}, {0, 0, 1}, {0.5, -0.5, 0.5}, {-0.3, 0.9, 0.2},
	}

	profileFor := func(order []int) *models.User {
		t.Helper()
		db := newTestStore(t)
		u := newTestUpdater(t, db)
		user := createUser(t, db, "dana")
		books := make([]*models.Book, len(vectors))
		for i, v := range vectors {
			books[i] = createBook(t, db, string(rune('a'+i)), v)
		}
		for _, i := range order {
			r := ratings[i]
			if err := u.RatingCreated(context.Background(), user.ID, books[r.book].ID, r.value); err != nil {
				t.Fatalf("RatingCreated() error = %v", err)
			}
		}
		return getUser(t, db, user.ID)
	}

	forward := profileFor([]int{0, 1, 2, 3, 4})
	for _, order := range [][]int{{4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}} {
		got := profileFor(order)
		assertProfile(t, got, forward.Embedding, forward.SumRatings)
	}
	if forward.SumRatings != 3.5 {
		t.Errorf("SumRatings = %v, want 3.5", forward.SumRatings)
	}
}

func TestUpdater_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)

	user := createUser(t, db, "carol")
	x := createBook(t, db, "x", embedding.Vector{1, 0, 0})

	t.Run("missing prior rating on update", func(t *testing.T) {
		err := u.RatingUpdated(ctx, user.ID, x.ID, 0.5, 1)
		if !errors.Is(err, ErrMissingPriorRating) {
			t.Errorf("RatingUpdated() error = %v, want ErrMissingPriorRating", err)
		}
		if _, err := db.GetRating(ctx, user.ID, x.ID); !errors.Is(err, database.ErrRatingNotFound) {
			t.Errorf("rating was created by a failed update: %v", err)
		}
	})

	t.Run("missing prior rating on delete", func(t *testing.T) {
		err := u.RatingDeleted(ctx, user.ID, x.ID, 1)
		if !errors.Is(err, ErrMissingPriorRating) {
			t.Errorf("RatingDeleted() error = %v, want ErrMissingPriorRating", err)
		}
	})

	mustRate(t, u, user.ID, x.ID, 1)

	t.Run("prior value mismatch", func(t *testing.T) {
		err := u.RatingUpdated(ctx, user.ID, x.ID, 0.75, 0.5)
		if !errors.Is(err, ErrPriorRatingMismatch) {
			t.Errorf("RatingUpdated() error = %v, want ErrPriorRatingMismatch", err)
		}
		assertProfile(t, getUser(t, db, user.ID), embedding.Vector{1, 0, 0}, 1)
	})

	t.Run("invalid value", func(t *testing.T) {
		for _, v := range []float64{-0.25, 0.3, 1.25, math.NaN()} {
			if _, err := u.Rate(ctx, user.ID, x.ID, v); !errors.Is(err, ErrInvalidRating) {
				t.Errorf("Rate(%v) error = %v, want ErrInvalidRating", v, err)
			}
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := u.Rate(ctx, user.ID, 999, 1)
		if !errors.Is(err, database.ErrBookNotFound) {
			t.Errorf("Rate() error = %v, want ErrBookNotFound", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := u.Rate(ctx, 999, x.ID, 1)
		if !errors.Is(err, database.ErrUserNotFound) {
			t.Errorf("Rate() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestUpdater_RateAndUnrate(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)
	inv := &countingInvalidator{}
	u.SetInvalidator(inv)

	user := createUser(t, db, "dave")
	x := createBook(t, db, "x", embedding.Vector{0, 0, 1})

	kind, err := u.Rate(ctx, user.ID, x.ID, 0.75)
	if err != nil || kind != RatingCreated {
		t.Fatalf("Rate() = %v, %v; want created", kind, err)
	}

	// A second create for the same book is an update.
	if err := u.RatingCreated(ctx, user.ID, x.ID, 1); err != nil {
		t.Fatalf("RatingCreated() error = %v", err)
	}
	assertProfile(t, getUser(t, db, user.ID), embedding.Vector{0, 0, 1}, 1)

	kind, err = u.Rate(ctx, user.ID, x.ID, 0.5)
	if err != nil || kind != RatingUpdated {
		t.Fatalf("Rate() = %v, %v; want updated", kind, err)
	}
	assertProfile(t, getUser(t, db, user.ID), embedding.Zero(testDim), 0)

	removed, err := u.Unrate(ctx, user.ID, x.ID)
	if err != nil {
		t.Fatalf("Unrate() error = %v", err)
	}
	if removed.Value != 0.5 || removed.BookID != x.ID {
		t.Errorf("Unrate() = %+v", removed)
	}

	if _, err := u.Unrate(ctx, user.ID, x.ID); !errors.Is(err, database.ErrRatingNotFound) {
		t.Errorf("second Unrate() error = %v, want ErrRatingNotFound", err)
	}

	if len(inv.calls) != 4 {
		t.Errorf("Invalidate calls = %v, want 4 successful mutations", inv.calls)
	}
	for _, id := range inv.calls {
		if id != user.ID {
			t.Errorf("Invalidate(%d), want %d", id, user.ID)
		}
	}
}

func TestUpdater_InvariantHoldsOverRandomSequence(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)
	user := createUser(t, db, "erin")

	books := []*models.Book{
		createBook(t, db, "a", embedding.Vector{1, 0, 0}),
		createBook(t, db, "b", embedding.Vector{0, 1, 0}),
		createBook(t, db, "c", embedding.Vector{0, 0, 1}),
		createBook(t, db, "d", embedding.Vector{1, 1, 0}),
		createBook(t, db, "e", embedding.Vector{-0.5, 0.2, 0.7}),
	}
	values := []float64{0, 0.25, 0.5, 0.75, 1}

	rng := rand.New(rand.NewSource(7))
	current := make(map[*models.Book]float64)
	for step := 0; step < 300; step++ {
		b := books[rng.Intn(len(books))]
		prev, rated := current[b]
		switch {
		case rated && rng.Intn(3) == 0:
			if err := u.RatingDeleted(ctx, user.ID, b.ID, prev); err != nil {
				t.Fatalf("step %d: RatingDeleted() error = %v", step, err)
			}
			delete(current, b)
		case rated:
			next := values[rng.Intn(len(values))]
			if err := u.RatingUpdated(ctx, user.ID, b.ID, prev, next); err != nil {
				t.Fatalf("step %d: RatingUpdated() error = %v", step, err)
			}
			current[b] = next
		default:
			next := values[rng.Intn(len(values))]
			if err := u.RatingCreated(ctx, user.ID, b.ID, next); err != nil {
				t.Fatalf("step %d: RatingCreated() error = %v", step, err)
			}
			current[b] = next
		}

		got := getUser(t, db, user.ID)
		want, wantSum := expectedProfile(current)
		if math.Abs(got.SumRatings-wantSum) > 1e-6 {
			t.Fatalf("step %d: SumRatings = %v, want %v", step, got.SumRatings, wantSum)
		}
		for i := range want {
			if math.Abs(got.Embedding[i]-want[i]) > 1e-6 {
				t.Fatalf("step %d: Embedding = %v, want %v", step, got.Embedding, want)
			}
		}
		if wantSum == 0 && !embedding.IsZero(got.Embedding) {
			t.Fatalf("step %d: Embedding = %v with zero sum", step, got.Embedding)
		}
	}
}

func TestUpdater_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)

	books := make([]*models.Book, 8)
	for i := range books {
		v := embedding.Vector{float64(i + 1), 1, float64(i % 3)}
		books[i] = createBook(t, db, string(rune('a'+i)), v)
	}
	users := []*models.User{
		createUser(t, db, "u1"),
		createUser(t, db, "u2"),
		createUser(t, db, "u3"),
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(users)*len(books))
	for _, user := range users {
		for _, b := range books {
			wg.Add(1)
			go func(userID, bookID int) {
				defer wg.Done()
				if _, err := u.Rate(ctx, userID, bookID, 1); err != nil {
					errs <- err
				}
			}(user.ID, b.ID)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Rate() error = %v", err)
	}

	liked := make(map[*models.Book]float64, len(books))
	for _, b := range books {
		liked[b] = 1
	}
	want, wantSum := expectedProfile(liked)
	for _, user := range users {
		got := getUser(t, db, user.ID)
		if math.Abs(got.SumRatings-wantSum) > epsilon {
			t.Errorf("user %d SumRatings = %v, want %v", user.ID, got.SumRatings, wantSum)
		}
		for i := range want {
			if math.Abs(got.Embedding[i]-want[i]) > 1e-9 {
				t.Errorf("user %d Embedding = %v, want %v", user.ID, got.Embedding, want)
				break
			}
		}
	}

	if n := len(u.locks.locks); n != 0 {
		t.Errorf("lock table holds %d entries after all mutations", n)
	}
}
