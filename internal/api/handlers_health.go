// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/models"
)

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, catalogue counts, recommendation cache statistics and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	health := models.HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	metrics.AppUptime.Set(health.Uptime)

	if dbConnected {
		counts, err := h.db.Count(r.Context())
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to count records for health check")
		} else {
			health.Users = counts.Users
			health.Books = counts.Books
			health.Keywords = counts.Keywords
			health.Ratings = counts.Ratings
		}
	} else {
		health.Status = "degraded"
	}

	if h.engine != nil {
		stats := h.engine.Stats()
		health.CacheEntries = stats.CacheEntries
		health.CacheHits = stats.CacheHits
		health.CacheMisses = stats.CacheMisses
	}

	status := http.StatusOK
	if !dbConnected {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, health, start, false)
}
