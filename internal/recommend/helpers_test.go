// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/models"
)

const (
	testDim = 3
	epsilon = 1e-9
)

// Test helpers

func newTestStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Options{InMemory: true, Dimension: testDim}, zerolog.Nop())
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Workers = 4
	return cfg
}

func newTestUpdater(t *testing.T, db *database.DB) *Updater {
	t.Helper()
	return NewUpdater(db, testConfig(), zerolog.Nop())
}

func createUser(t *testing.T, db *database.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%q) error = %v", name, err)
	}
	return u
}

// createUserWithProfile stores a user whose embedding is set directly.
func createUserWithProfile(t *testing.T, db *database.DB, name string, emb embedding.Vector) *models.User {
	t.Helper()
	u := &models.User{Username: name, Embedding: emb, SumRatings: 1}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%q) error = %v", name, err)
	}
	return u
}

func createBook(t *testing.T, db *database.DB, title string, emb embedding.Vector, keywords ...string) *models.Book {
	t.Helper()
	ctx := context.Background()
	b := &models.Book{Title: title, Cover: "https://covers.example/" + title + ".jpg", Embedding: emb}
	for _, word := range keywords {
		kw, err := db.EnsureKeyword(ctx, word)
		if err != nil {
			t.Fatalf("EnsureKeyword(%q) error = %v", word, err)
		}
		b.KeywordIDs = append(b.KeywordIDs, kw.ID)
	}
	if err := db.CreateBook(ctx, b); err != nil {
		t.Fatalf("CreateBook(%q) error = %v", title, err)
	}
	return b
}

// putRating writes a rating without touching the profile.
func putRating(t *testing.T, db *database.DB, userID, bookID int, value float64) {
	t.Helper()
	err := db.UpdateProfile(context.Background(), userID, func(tx *database.ProfileTx) error {
		return tx.PutRating(models.Rating{BookID: bookID, Value: value})
	})
	if err != nil {
		t.Fatalf("PutRating(%d, %d) error = %v", userID, bookID, err)
	}
}

func mustRate(t *testing.T, u *Updater, userID, bookID int, value float64) {
	t.Helper()
	if _, err := u.Rate(context.Background(), userID, bookID, value); err != nil {
		t.Fatalf("Rate(%d, %d, %v) error = %v", userID, bookID, value, err)
	}
}

func getUser(t *testing.T, db *database.DB, id int) *models.User {
	t.Helper()
	u, err := db.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("GetUser(%d) error = %v", id, err)
	}
	return u
}

// expectedProfile is the normalized weighted mean of the liked books.
func expectedProfile(liked map[*models.Book]float64) (embedding.Vector, float64) {
	acc := embedding.Zero(testDim)
	var sum float64
	for b, v := range liked {
		if v < models.LikesThreshold {
			continue
		}
		embedding.AddScaled(acc, v, b.Embedding)
		sum += v
	}
	if sum == 0 {
		return embedding.Zero(testDim), 0
	}
	embedding.Scale(acc, 1/sum)
	embedding.Normalize(acc)
	return acc, sum
}

func assertProfile(t *testing.T, got *models.User, wantEmb embedding.Vector, wantSum float64) {
	t.Helper()
	if math.Abs(got.SumRatings-wantSum) > epsilon {
		t.Errorf("SumRatings = %v, want %v", got.SumRatings, wantSum)
	}
	assertVector(t, got.Embedding, wantEmb)
}

func assertVector(t *testing.T, got, want embedding.Vector) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("vector length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("vector = %v, want %v", got, want)
			return
		}
	}
}

// countingInvalidator records Invalidate calls.
type countingInvalidator struct {
	calls []int
}

func (c *countingInvalidator) Invalidate(userID int) {
	c.calls = append(c.calls, userID)
}
