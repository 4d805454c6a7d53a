// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

// Package database is the persistence layer for users, books, keywords,
// ratings and their embeddings.
//
// # Overview
//
// Everything lives in a single BadgerDB instance. Records are JSON encoded
// with goccy/go-json; embeddings are stored separately in the binary form
// produced by the embedding package so that a round trip is exact.
//
// # Key Layout
//
//	user:<id>              models.User (embedding excluded)
//	user_emb:<id>          normalized taste vector
//	user_acc:<id>          unnormalized running sum behind the taste vector
//	book:<id>              models.Book (embedding excluded)
//	book_emb:<id>          book embedding
//	keyword:<id>           models.Keyword
//	keyword_word:<word>    keyword ID
//	rating:<user>:<book>   models.Rating
//
// IDs are zero padded to twenty digits so that prefix iteration visits
// records in ascending numeric order.
//
// # Transactions
//
// Reads use db.View and observe a consistent snapshot. Rating mutations
// and the profile rewrite they cause go through UpdateProfile, which runs
// a single read-write transaction: either both are committed or neither is.
// Callers that mutate the same user concurrently must serialize themselves;
// Badger reports overlapping writers as badger.ErrConflict.
//
// # Usage Example
//
//	db, err := database.Open(database.Options{Path: "/data/xrecommender"})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	user, err := db.GetUser(ctx, 42)
package database
