// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/recommend"
)

// API error codes
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeDatabase           = "DATABASE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// errorStatus maps a domain error to an HTTP status and API error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, recommend.ErrInvalidRating),
		errors.Is(err, recommend.ErrLimitExceeded),
		errors.Is(err, embedding.ErrDimensionMismatch),
		errors.Is(err, database.ErrEmptyKeyword):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, database.ErrInvalidID):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, recommend.ErrMissingPriorRating),
		errors.Is(err, recommend.ErrPriorRatingMismatch),
		errors.Is(err, database.ErrAlreadyExists):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeServiceUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondDomainError translates err into the error envelope. Client errors
// echo the error text; server errors are logged with the request context and
// answered with a generic message.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status, code := errorStatus(err)
	if status < http.StatusInternalServerError {
		respondError(w, status, code, err.Error(), nil)
		return
	}

	logging.Ctx(r.Context()).Error().
		Err(err).
		Str("code", code).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Msg(action + " failed")
	respondError(w, status, code, "Failed to "+action, nil)
}
