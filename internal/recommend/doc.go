// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

// Package recommend implements user-user book recommendations over taste
// embeddings, together with keyword explanations of why a book was picked.
//
// # Architecture
//
//   - Updater: keeps every user's taste vector equal to the L2-normalized,
//     rating-weighted mean of the embeddings of the books they like. Each
//     rating mutation is folded in incrementally.
//   - NeighborFinder: cosine similarity of the target against every other
//     user, top n.
//   - Ranker: aggregates the neighbors' favorable ratings into book scores,
//     skipping books the target has already rated.
//   - Engine: RecommendBooks = Ranker over NeighborFinder, with an LRU cache.
//   - Explainer: keywords shared between the user's liked books and the
//     recommended books, plus a graph view of the same data.
//   - Auditor: recomputes profiles from scratch and reports or repairs drift.
//
// # Design Principles
//
//   - Deterministic: ties are broken by ascending user or book ID.
//   - Atomic: a rating mutation and the profile rewrite it causes commit in
//     one BadgerDB transaction.
//   - Serialized per user: profile read-modify-write cycles for the same user
//     never interleave; different users proceed in parallel.
//   - Observable: every stage records Prometheus metrics.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(db, cfg, logger)
//	updater := recommend.NewUpdater(db, cfg, logger)
//	updater.SetInvalidator(engine)
//
//	if _, err := updater.Rate(ctx, userID, bookID, 1); err != nil {
//	    return err
//	}
//
//	recs, err := engine.RecommendBooks(ctx, userID, 0, 0) // defaults n=35, k=5
//
// # Thread Safety
//
// All exported types are safe for concurrent use.
package recommend
