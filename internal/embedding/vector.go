// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package embedding

import "math"

// Dot returns the inner product of a and b. Vectors of different length
// yield 0.
func Dot(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v Vector) float64 {
	return math.Sqrt(Dot(v, v))
}

// IsZero reports whether every component of v is zero.
func IsZero(v Vector) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b.
// Zero-norm or mismatched vectors have similarity 0 so rankings stay total.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

// AddScaled performs dst += alpha*src in place. dst and src must have the
// same dimension.
func AddScaled(dst Vector, alpha float64, src Vector) {
	for i := range dst {
		dst[i] += alpha * src[i]
	}
}

// Scale multiplies v by alpha in place.
func Scale(v Vector, alpha float64) {
	for i := range v {
		v[i] *= alpha
	}
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
// It returns the norm before scaling.
func Normalize(v Vector) float64 {
	n := Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return n
	}
	for i := range v {
		v[i] /= n
	}
	return n
}
