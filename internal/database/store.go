// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/embedding"
)

// sequenceBandwidth is the number of IDs leased from Badger at a time.
const sequenceBandwidth = 64

// Options configures the store.
type Options struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Dimension is the embedding length enforced on every read and write.
	// Zero means embedding.DefaultDimension.
	Dimension int
}

// DB is the Badger-backed catalogue and profile store.
// It is safe for concurrent use.
type DB struct {
	db     *badger.DB
	dim    int
	logger zerolog.Logger

	userSeq    *badger.Sequence
	bookSeq    *badger.Sequence
	keywordSeq *badger.Sequence
}

// Open opens (or creates) the store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(opts Options, logger zerolog.Logger) (*DB, error) {
	dim := opts.Dimension
	if dim == 0 {
		dim = embedding.DefaultDimension
	}
	if dim < 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("database path is required unless running in memory")
	}

	logger = logger.With().Str("component", "database").Logger()

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = &badgerLogger{logger: logger}

	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	d := &DB{db: bdb, dim: dim, logger: logger}
	for _, s := range []struct {
		key string
		dst **badger.Sequence
	}{
		{seqUsers, &d.userSeq},
		{seqBooks, &d.bookSeq},
		{seqKeywords, &d.keywordSeq},
	} {
		seq, err := bdb.GetSequence([]byte(s.key), sequenceBandwidth)
		if err != nil {
			d.releaseSequences()
			_ = bdb.Close()
			return nil, fmt.Errorf("get sequence %s: %w", s.key, err)
		}
		*s.dst = seq
	}

	logger.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Int("dimension", dim).
		Msg("database opened")

	return d, nil
}

// Close releases ID leases and closes Badger.
func (d *DB) Close() error {
	d.releaseSequences()
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	d.logger.Info().Msg("database closed")
	return nil
}

func (d *DB) releaseSequences() {
	for _, seq := range []*badger.Sequence{d.userSeq, d.bookSeq, d.keywordSeq} {
		if seq == nil {
			continue
		}
		if err := seq.Release(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to release sequence")
		}
	}
}

// Dimension returns the embedding length enforced by the store.
func (d *DB) Dimension() int {
	return d.dim
}

// Ping reports whether the store is usable.
func (d *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return nil
}

// Counts is a summary of the store contents.
type Counts struct {
	Users    int `json:"users"`
	Books    int `json:"books"`
	Keywords int `json:"keywords"`
	Ratings  int `json:"ratings"`
}

// Count tallies records with key-only iteration.
func (d *DB) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := d.db.View(func(txn *badger.Txn) error {
		for _, p := range []struct {
			prefix string
			dst    *int
		}{
			{prefixUser, &c.Users},
			{prefixBook, &c.Books},
			{prefixKeyword, &c.Keywords},
			{prefixRating, &c.Ratings},
		} {
			n, err := countPrefix(ctx, txn, []byte(p.prefix))
			if err != nil {
				return err
			}
			*p.dst = n
		}
		return nil
	})
	return c, err
}

func countPrefix(ctx context.Context, txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// nextID leases IDs from seq until one is free under keyFn.
// Badger sequences start at zero; IDs start at one.
func nextID(txn *badger.Txn, seq *badger.Sequence, keyFn func(int) []byte) (int, error) {
	for {
		n, err := seq.Next()
		if err != nil {
			return 0, fmt.Errorf("next sequence value: %w", err)
		}
		id := int(n) + 1
		exists, err := keyExists(txn, keyFn(id))
		if err != nil {
			return 0, err
		}
		if !exists {
			return id, nil
		}
	}
}

func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return true, nil
}

// getJSON decodes the value at key into dst. A missing key yields notFound.
func getJSON(txn *badger.Txn, key []byte, dst any, notFound error) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dst); err != nil {
			return fmt.Errorf("unmarshal %s: %w", key, err)
		}
		return nil
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// getVector decodes the embedding at key. ok is false when the key is absent.
func (d *DB) getVector(txn *badger.Txn, key []byte) (v embedding.Vector, ok bool, err error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	err = item.Value(func(val []byte) error {
		var derr error
		v, derr = embedding.Decode(val, d.dim)
		return derr
	})
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

func (d *DB) setVector(txn *badger.Txn, key []byte, v embedding.Vector) error {
	if err := v.CheckDim(d.dim); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := txn.Set(key, embedding.Encode(v)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}
