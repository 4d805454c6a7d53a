// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/models"
)

// CreateBook inserts b with its embedding. A zero ID is replaced by the next
// free one; a nil embedding is stored as the zero vector. Every keyword in
// b.KeywordIDs must already exist.
func (d *DB) CreateBook(ctx context.Context, b *models.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.ID < 0 {
		return fmt.Errorf("book %d: %w", b.ID, ErrInvalidID)
	}
	if b.Embedding == nil {
		b.Embedding = embedding.Zero(d.dim)
	}
	if err := b.Embedding.CheckDim(d.dim); err != nil {
		return fmt.Errorf("book embedding: %w", err)
	}
	b.KeywordIDs = sortedUnique(b.KeywordIDs)

	return d.db.Update(func(txn *badger.Txn) error {
		if b.ID == 0 {
			id, err := nextID(txn, d.bookSeq, bookKey)
			if err != nil {
				return err
			}
			b.ID = id
		} else {
			exists, err := keyExists(txn, bookKey(b.ID))
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("book %d: %w", b.ID, ErrAlreadyExists)
			}
		}
		if err := requireKeywords(txn, b.KeywordIDs); err != nil {
			return err
		}
		if err := setJSON(txn, bookKey(b.ID), b); err != nil {
			return err
		}
		return d.setVector(txn, bookEmbKey(b.ID), b.Embedding)
	})
}

// GetBook returns the book with its embedding.
func (d *DB) GetBook(ctx context.Context, id int) (*models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b *models.Book
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		b, err = d.loadBook(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooks returns books in the order of ids. Any missing ID fails the call.
func (d *DB) GetBooks(ctx context.Context, ids []int) ([]*models.Book, error) {
	books := make([]*models.Book, 0, len(ids))
	err := d.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := d.loadBook(txn, id)
			if err != nil {
				return err
			}
			books = append(books, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (d *DB) loadBook(txn *badger.Txn, id int) (*models.Book, error) {
	var b models.Book
	if err := getJSON(txn, bookKey(id), &b, fmt.Errorf("book %d: %w", id, ErrBookNotFound)); err != nil {
		return nil, err
	}
	emb, err := d.bookEmbedding(txn, id)
	if err != nil {
		return nil, err
	}
	b.Embedding = emb
	return &b, nil
}

func (d *DB) bookEmbedding(txn *badger.Txn, id int) (embedding.Vector, error) {
	emb, ok, err := d.getVector(txn, bookEmbKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		exists, err := keyExists(txn, bookKey(id))
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
		}
		emb = embedding.Zero(d.dim)
	}
	return emb, nil
}

// BookEmbedding returns the stored embedding of a book.
func (d *DB) BookEmbedding(ctx context.Context, id int) (embedding.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var emb embedding.Vector
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		emb, err = d.bookEmbedding(txn, id)
		return err
	})
	return emb, err
}

// SetBookEmbedding overwrites a book's embedding. Used by loaders only;
// the recommender treats book embeddings as fixed.
func (d *DB) SetBookEmbedding(ctx context.Context, id int, v embedding.Vector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.CheckDim(d.dim); err != nil {
		return fmt.Errorf("book %d embedding: %w", id, err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, bookKey(id))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("book %d: %w", id, ErrBookNotFound)
		}
		return d.setVector(txn, bookEmbKey(id), v)
	})
}

// BooksNotRatedBy returns the IDs of books the user has not rated at any
// value, ascending.
func (d *DB) BooksNotRatedBy(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := d.db.View(func(txn *badger.Txn) error {
		rated, err := ratedBookSet(ctx, txn, userID)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixBook)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := idFromKey(it.Item().Key(), prefixBook)
			if err != nil {
				return err
			}
			if _, ok := rated[id]; !ok {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

// EnsureKeyword returns the keyword with the given text, creating it if
// needed. Surrounding whitespace is ignored.
func (d *DB) EnsureKeyword(ctx context.Context, word string) (models.Keyword, error) {
	if err := ctx.Err(); err != nil {
		return models.Keyword{}, err
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return models.Keyword{}, ErrEmptyKeyword
	}

	var kw models.Keyword
	err := d.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keywordWordKey(word))
		switch {
		case err == nil:
			return item.Value(func(val []byte) error {
				id, perr := strconv.Atoi(string(val))
				if perr != nil {
					return fmt.Errorf("keyword index %q: %w", word, perr)
				}
				kw = models.Keyword{ID: id, Word: word}
				return nil
			})
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("get keyword %q: %w", word, err)
		}

		id, err := nextID(txn, d.keywordSeq, keywordKey)
		if err != nil {
			return err
		}
		kw = models.Keyword{ID: id, Word: word}
		if err := setJSON(txn, keywordKey(id), kw); err != nil {
			return err
		}
		if err := txn.Set(keywordWordKey(word), []byte(strconv.Itoa(id))); err != nil {
			return fmt.Errorf("set keyword index: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Keyword{}, err
	}
	return kw, nil
}

// GetKeyword returns a keyword by ID.
func (d *DB) GetKeyword(ctx context.Context, id int) (models.Keyword, error) {
	if err := ctx.Err(); err != nil {
		return models.Keyword{}, err
	}
	var kw models.Keyword
	err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keywordKey(id), &kw, fmt.Errorf("keyword %d: %w", id, ErrKeywordNotFound))
	})
	return kw, err
}

// AttachKeywords adds keywords to a book. Attaching a keyword twice is a no-op.
func (d *DB) AttachKeywords(ctx context.Context, bookID int, keywordIDs []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		var b models.Book
		if err := getJSON(txn, bookKey(bookID), &b, fmt.Errorf("book %d: %w", bookID, ErrBookNotFound)); err != nil {
			return err
		}
		if err := requireKeywords(txn, keywordIDs); err != nil {
			return err
		}
		b.KeywordIDs = sortedUnique(append(b.KeywordIDs, keywordIDs...))
		return setJSON(txn, bookKey(bookID), &b)
	})
}

// KeywordsForBooks maps each requested book to its keywords, ascending by
// keyword ID. Books without keywords map to an empty slice.
func (d *DB) KeywordsForBooks(ctx context.Context, bookIDs []int) (map[int][]models.Keyword, error) {
	result := make(map[int][]models.Keyword, len(bookIDs))
	err := d.db.View(func(txn *badger.Txn) error {
		words := make(map[int]models.Keyword)
		for _, bookID := range bookIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			var b models.Book
			if err := getJSON(txn, bookKey(bookID), &b, fmt.Errorf("book %d: %w", bookID, ErrBookNotFound)); err != nil {
				return err
			}
			kws := make([]models.Keyword, 0, len(b.KeywordIDs))
			for _, kid := range b.KeywordIDs {
				kw, ok := words[kid]
				if !ok {
					if err := getJSON(txn, keywordKey(kid), &kw, fmt.Errorf("keyword %d: %w", kid, ErrKeywordNotFound)); err != nil {
						return err
					}
					words[kid] = kw
				}
				kws = append(kws, kw)
			}
			result[bookID] = kws
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func requireKeywords(txn *badger.Txn, ids []int) error {
	for _, id := range ids {
		exists, err := keyExists(txn, keywordKey(id))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("keyword %d: %w", id, ErrKeywordNotFound)
		}
	}
	return nil
}

func sortedUnique(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int(nil), ids...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
