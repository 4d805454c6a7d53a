// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps the library in a thread-safe singleton validator with
// user-friendly error messages that convert to the API's VALIDATION_ERROR
// format.
//
// # Custom Validators
//
//   - rating_value: a float on the rating scale {0, 0.25, 0.5, 0.75, 1}
//
// # Quick Start
//
//	type RateRequest struct {
//	    Rating *float64 `json:"rating" validate:"required,rating_value"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
