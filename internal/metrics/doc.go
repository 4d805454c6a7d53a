// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed by the API server at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Database Metrics:
  - badger_operation_duration_seconds: BadgerDB operation latency (histogram)
    Labels: operation
  - badger_operation_errors_total: Failed operations (counter)
    Labels: operation, error_type

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Profile Metrics:
  - rating_mutations_total: Rating mutations folded into profiles (counter)
    Labels: kind (created, updated, deleted), outcome (ok, error)
  - profile_update_duration_seconds: Mutation plus profile rewrite (histogram)
  - profile_audit_runs_total: Audit sweeps (counter)
    Labels: outcome
  - profile_audit_duration_seconds: Audit sweep duration (histogram)
  - profile_drift_detected_total: Profiles found out of sync (counter)
  - profile_repairs_total: Profiles rewritten by the auditor (counter)
    Labels: outcome

Recommendation Metrics:
  - neighbor_scan_duration_seconds: Full neighbor scan latency (histogram)
  - neighbor_scan_candidates: Users compared per scan (histogram)
  - recommendation_duration_seconds: End-to-end latency (histogram)
  - recommendations_served_total: Lists served (counter)
    Labels: result (ok, empty, error)
  - recommendation_cache_hits_total / recommendation_cache_misses_total
  - recommendation_cache_entries: Cached lists (gauge)

# Usage Example

	start := time.Now()
	err := updater.Rate(ctx, userID, bookID, 1)
	metrics.RecordRatingMutation("created", time.Since(start), err)
*/
package metrics
