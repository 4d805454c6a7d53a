// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"time"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/recommend"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: Envelope, parameter and body helpers
//   - handlers_health.go: Health endpoint
//   - handlers_books.go: Catalogue reads and writes
//   - handlers_users.go: Signup and the discover feed
//   - handlers_ratings.go: Rating reads and mutations
//   - handlers_recommend.go: Neighbors, recommendations and the explanation graph
type Handler struct {
	db        *database.DB
	updater   *recommend.Updater
	engine    *recommend.Engine
	explainer *recommend.Explainer
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// The updater must already have the engine registered as its invalidator so
// rating mutations drop the user's cached lists.
//
// Example:
//
//	handler := api.NewHandler(db, updater, engine, explainer)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))
//	http.ListenAndServe(":8080", router.SetupChi())
func NewHandler(db *database.DB, updater *recommend.Updater, engine *recommend.Engine, explainer *recommend.Explainer) *Handler {
	return &Handler{
		db:        db,
		updater:   updater,
		engine:    engine,
		explainer: explainer,
		startTime: time.Now(),
	}
}
