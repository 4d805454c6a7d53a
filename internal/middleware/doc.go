// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package middleware provides HTTP middleware components for the API router.

Key Components:

  - Request ID: UUID-based request tracking, fed into logging.Ctx
  - Prometheus Metrics: HTTP request/response instrumentation labelled by
    chi route pattern

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Response compression, CORS and rate limiting come from the chi ecosystem and
are assembled in package api.
*/
package middleware
