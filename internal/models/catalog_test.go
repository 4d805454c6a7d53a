// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package models

import (
	"math"
	"testing"
)

func TestValidRatingValue(t *testing.T) {
	tests := []struct {
		value float64
		want  bool
	}{
		{0, true},
		{0.25, true},
		{0.5, true},
		{0.75, true},
		{1, true},
		{0.3, false},
		{-0.25, false},
		{1.25, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}

	for _, tt := range tests {
		if got := ValidRatingValue(tt.value); got != tt.want {
			t.Errorf("ValidRatingValue(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRating_Favorable(t *testing.T) {
	if !(Rating{Value: LikesThreshold}).Favorable(LikesThreshold) {
		t.Error("a rating exactly at the threshold must be favorable")
	}
	below := math.Nextafter(LikesThreshold, 0)
	if (Rating{Value: below}).Favorable(LikesThreshold) {
		t.Errorf("Favorable(%v) = true, one ulp below the threshold must not be favorable", below)
	}
	if (Rating{Value: 0.75}).Favorable(1) {
		t.Error("Favorable() ignored a configured threshold of 1")
	}
	if !(Rating{Value: 0.5}).Favorable(0.5) {
		t.Error("Favorable() ignored a configured threshold of 0.5")
	}
}

func TestUser_HasProfile(t *testing.T) {
	u := &User{}
	if u.HasProfile() {
		t.Error("new user should have no profile")
	}
	u.SumRatings = 0.75
	if !u.HasProfile() {
		t.Error("user with SumRatings should have a profile")
	}
}
