// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

// Package embedding provides the dense vector type shared by users and books,
// its binary codec, and the vector arithmetic used by the recommendation core.
//
// # Storage Format
//
// A vector of dimension D is stored as D little-endian IEEE-754 float64
// values (8*D bytes). Encoding and decoding are exact: a vector written with
// Encode and read back with Decode is bit-for-bit identical, including
// negative zero and subnormal values.
//
// # Dimension
//
// Every vector handled by one deployment has the same dimension (768 for the
// SBERT book embeddings by default). Decode rejects payloads whose length does
// not match the configured dimension with ErrDimensionMismatch; callers treat
// that as a data-integrity failure rather than something to recover from.
package embedding
