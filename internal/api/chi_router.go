// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/xrecommender/internal/middleware"
)

// compressionLevel is the gzip level used for JSON responses.
const compressionLevel = 5

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)        // X-Request-ID plus logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	// promhttp negotiates its own compression
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

		// Health is exempt from rate limiting so monitors never trip it
		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			router.registerChiCatalogueRoutes(r)
			router.registerChiUserRoutes(r)
		})
	})

	return r
}

// registerChiCatalogueRoutes adds catalogue routes.
func (router *Router) registerChiCatalogueRoutes(r chi.Router) {
	r.Post("/books", router.handler.CreateBook)
	r.Get("/books/{bookID}", router.handler.GetBook)
	r.Post("/books/{bookID}/keywords", router.handler.AttachBookKeywords)
}

// registerChiUserRoutes adds signup plus the rating and recommendation
// routes of one user.
func (router *Router) registerChiUserRoutes(r chi.Router) {
	r.Post("/users", router.handler.CreateUser)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/discover", router.handler.Discover)

		// Ratings
		r.Get("/ratings", router.handler.ListRatings)
		r.Put("/ratings/{bookID}", router.handler.PutRating)
		r.Delete("/ratings/{bookID}", router.handler.DeleteRating)

		// Recommendations
		r.Get("/neighbors", router.handler.Neighbors)
		r.Get("/recommendations", router.handler.Recommendations)
		r.Get("/recommendations/graph", router.handler.RecommendationGraph)
	})
}
