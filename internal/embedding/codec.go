// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package embedding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DefaultDimension is the dimension of the sentence embeddings used for books.
const DefaultDimension = 768

// bytesPerValue is the encoded width of one component.
const bytesPerValue = 8

var (
	// ErrDimensionMismatch is returned when a vector does not have the
	// configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptVector is returned when an encoded payload is not a whole
	// number of components.
	ErrCorruptVector = errors.New("corrupt embedding payload")
)

// Vector is a dense embedding. The zero value (nil) is not a valid stored
// vector; use Zero to build the default embedding of a new entity.
type Vector []float64

// Zero returns the zero vector of dimension dim.
func Zero(dim int) Vector {
	return make(Vector, dim)
}

// Clone returns a copy of v that shares no memory with it.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Dim returns the vector dimension.
func (v Vector) Dim() int {
	return len(v)
}

// CheckDim returns ErrDimensionMismatch if v does not have dimension dim.
func (v Vector) CheckDim(dim int) error {
	if len(v) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), dim)
	}
	return nil
}

// Encode serializes v into its storage form.
func Encode(v Vector) []byte {
	buf := make([]byte, len(v)*bytesPerValue)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*bytesPerValue:], math.Float64bits(f))
	}
	return buf
}

// Decode deserializes a stored vector and checks it against dim.
// A dim of 0 accepts any whole-component payload.
func Decode(b []byte, dim int) (Vector, error) {
	if len(b)%bytesPerValue != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptVector, len(b))
	}
	n := len(b) / bytesPerValue
	if dim > 0 && n != dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, n, dim)
	}
	v := make(Vector, n)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*bytesPerValue:]))
	}
	return v, nil
}
