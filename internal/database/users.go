// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/models"
)

// CreateUser inserts u. A zero ID is replaced by the next free one.
// A non-empty username must be unique.
// A nil embedding is stored as the zero vector. A non-nil embedding is
// taken as already normalized, with SumRatings as its weight.
func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID < 0 {
		return fmt.Errorf("user %d: %w", u.ID, ErrInvalidID)
	}
	if u.Embedding == nil {
		u.Embedding = embedding.Zero(d.dim)
	}
	if err := u.Embedding.CheckDim(d.dim); err != nil {
		return fmt.Errorf("user embedding: %w", err)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	return d.db.Update(func(txn *badger.Txn) error {
		if u.Username != "" {
			taken, err := keyExists(txn, usernameKey(u.Username))
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("username %q: %w", u.Username, ErrAlreadyExists)
			}
		}
		if u.ID == 0 {
			id, err := nextID(txn, d.userSeq, userKey)
			if err != nil {
				return err
			}
			u.ID = id
		} else {
			exists, err := keyExists(txn, userKey(u.ID))
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("user %d: %w", u.ID, ErrAlreadyExists)
			}
		}
		if err := setJSON(txn, userKey(u.ID), u); err != nil {
			return err
		}
		if u.Username != "" {
			if err := txn.Set(usernameKey(u.Username), []byte(strconv.Itoa(u.ID))); err != nil {
				return fmt.Errorf("set username index: %w", err)
			}
		}
		return d.setVector(txn, userEmbKey(u.ID), u.Embedding)
	})
}

// GetUser returns the user with its embedding.
func (d *DB) GetUser(ctx context.Context, id int) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var u *models.User
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		u, err = d.loadUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *DB) loadUser(txn *badger.Txn, id int) (*models.User, error) {
	var u models.User
	if err := getJSON(txn, userKey(id), &u, fmt.Errorf("user %d: %w", id, ErrUserNotFound)); err != nil {
		return nil, err
	}
	emb, ok, err := d.getVector(txn, userEmbKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		emb = embedding.Zero(d.dim)
	}
	u.Embedding = emb
	return &u, nil
}

// UserEmbedding returns the stored taste vector of a user.
func (d *DB) UserEmbedding(ctx context.Context, id int) (embedding.Vector, error) {
	u, err := d.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Embedding, nil
}

// SetUserEmbedding overwrites a user's taste vector. SumRatings is kept as
// the weight of the new vector and any stored running sum is discarded.
func (d *DB) SetUserEmbedding(ctx context.Context, id int, v embedding.Vector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.CheckDim(d.dim); err != nil {
		return fmt.Errorf("user %d embedding: %w", id, err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, userKey(id))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
		if err := d.setVector(txn, userEmbKey(id), v); err != nil {
			return err
		}
		if err := txn.Delete(userAccKey(id)); err != nil {
			return fmt.Errorf("delete running sum: %w", err)
		}
		return nil
	})
}

// ListUsers returns every user with its embedding, ascending by ID.
func (d *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	return d.listUsers(ctx, -1)
}

// ListUsersExcept returns every user other than exclude, ascending by ID.
func (d *DB) ListUsersExcept(ctx context.Context, exclude int) ([]*models.User, error) {
	return d.listUsers(ctx, exclude)
}

func (d *DB) listUsers(ctx context.Context, exclude int) ([]*models.User, error) {
	start := time.Now()
	var users []*models.User
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixUser)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var u models.User
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			})
			if err != nil {
				return fmt.Errorf("unmarshal %s: %w", item.Key(), err)
			}
			if u.ID == exclude {
				continue
			}
			emb, ok, err := d.getVector(txn, userEmbKey(u.ID))
			if err != nil {
				return err
			}
			if !ok {
				emb = embedding.Zero(d.dim)
			}
			u.Embedding = emb
			users = append(users, &u)
		}
		return nil
	})
	metrics.RecordDBOperation("list_users", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserIDs returns the IDs of all users, ascending.
func (d *DB) UserIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixUser)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := idFromKey(it.Item().Key(), prefixUser)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}
