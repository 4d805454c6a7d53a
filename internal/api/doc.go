// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package api provides the HTTP API of the recommender.

Routes are served by go-chi/chi with a global stack of request IDs, real IP
extraction, panic recovery and CORS (go-chi/cors). Everything under /api/v1
is counted by the Prometheus middleware and gzip-compressed; all routes but
health are rate limited per client IP with go-chi/httprate.

# Endpoints

	GET    /api/v1/health
	GET    /api/v1/books/{bookID}
	POST   /api/v1/books                              {"title": "Dune", "embedding": [...], "keywords": [...]}
	POST   /api/v1/books/{bookID}/keywords            {"keywords": ["desert"]}
	POST   /api/v1/users                              {"username": "ada"}
	GET    /api/v1/users/{userID}/discover?limit=&offset=
	GET    /api/v1/users/{userID}/ratings
	PUT    /api/v1/users/{userID}/ratings/{bookID}     {"rating": 0.75}
	DELETE /api/v1/users/{userID}/ratings/{bookID}
	GET    /api/v1/users/{userID}/neighbors?n=
	GET    /api/v1/users/{userID}/recommendations?n=&k=
	GET    /api/v1/users/{userID}/recommendations/graph?n=&k=
	GET    /metrics

# Response Format

Every /api/v1 response uses models.APIResponse:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3}
	}

Errors set status to "error" and carry a code: BAD_REQUEST,
VALIDATION_ERROR, NOT_FOUND, CONFLICT, TOO_MANY_REQUESTS,
METHOD_NOT_ALLOWED, SERVICE_UNAVAILABLE or INTERNAL_ERROR.

Rating mutations go through recommend.Updater so the stored rating and the
user's profile change in the same transaction. A first rating answers 201,
a replacement 200.
*/
package api
