// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - BadgerDB operations
// - API endpoint latency and throughput
// - Profile maintenance (rating mutations, audits)
// - Neighbor search and ranking
// - Recommendation cache efficiency

var (
	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "badger_operation_duration_seconds",
			Help:    "Duration of BadgerDB operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	DBOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badger_operation_errors_total",
			Help: "Total number of failed BadgerDB operations",
		},
		[]string{"operation", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Profile Metrics
	RatingMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_mutations_total",
			Help: "Total number of rating mutations applied to user profiles",
		},
		[]string{"kind", "outcome"}, // kind: created, updated, deleted
	)

	ProfileUpdateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_update_duration_seconds",
			Help:    "Time to apply one rating mutation including the profile rewrite",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ProfileAuditRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_audit_runs_total",
			Help: "Total number of profile audit sweeps",
		},
		[]string{"outcome"},
	)

	ProfileAuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_audit_duration_seconds",
			Help:    "Duration of profile audit sweeps",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	ProfileDriftDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_drift_detected_total",
			Help: "Total number of user profiles found out of sync with their ratings",
		},
	)

	ProfileRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_repairs_total",
			Help: "Total number of profile repairs",
		},
		[]string{"outcome"},
	)

	// Recommendation Metrics
	NeighborScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neighbor_scan_duration_seconds",
			Help:    "Time to score every other user against the target",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	NeighborCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neighbor_scan_candidates",
			Help:    "Number of users compared in one neighbor scan",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation lists served",
		},
		[]string{"result"}, // result: ok, empty, error
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	RecommendationCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_cache_entries",
			Help: "Current number of cached recommendation lists",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBOperation records a BadgerDB operation metric
func RecordDBOperation(operation string, duration time.Duration, err error) {
	DBOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBOperationErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRatingMutation records one rating mutation and the time it took to
// fold into the user's profile.
func RecordRatingMutation(kind string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RatingMutations.WithLabelValues(kind, outcome).Inc()
	ProfileUpdateDuration.Observe(duration.Seconds())
}

// RecordNeighborScan records a neighbor search over candidates users.
func RecordNeighborScan(candidates int, duration time.Duration) {
	NeighborScanDuration.Observe(duration.Seconds())
	NeighborCandidates.Observe(float64(candidates))
}

// RecordRecommendation records a served recommendation list.
func RecordRecommendation(returned int, duration time.Duration, err error) {
	RecommendationDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		RecommendationsServed.WithLabelValues("error").Inc()
	case returned == 0:
		RecommendationsServed.WithLabelValues("empty").Inc()
	default:
		RecommendationsServed.WithLabelValues("ok").Inc()
	}
}

// RecordRecommendationCache records a cache lookup
func RecordRecommendationCache(hit bool) {
	if hit {
		RecommendationCacheHits.Inc()
	} else {
		RecommendationCacheMisses.Inc()
	}
}

// RecordProfileAudit records one audit sweep and the number of drifted profiles.
func RecordProfileAudit(duration time.Duration, drifted int, err error) {
	ProfileAuditDuration.Observe(duration.Seconds())
	ProfileDriftDetected.Add(float64(drifted))
	if err != nil {
		ProfileAuditRuns.WithLabelValues("error").Inc()
		return
	}
	ProfileAuditRuns.WithLabelValues("ok").Inc()
}

// RecordProfileRepair records a profile rewrite by the auditor.
func RecordProfileRepair(err error) {
	if err != nil {
		ProfileRepairs.WithLabelValues("error").Inc()
		return
	}
	ProfileRepairs.WithLabelValues("ok").Inc()
}

// errorType buckets errors into a small label set.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "dimension"):
		return "dimension"
	case strings.Contains(msg, "conflict"):
		return "conflict"
	default:
		return "other"
	}
}
