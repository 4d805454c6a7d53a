// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

// Package services provides suture.Service wrappers for the long-running
// parts of the server.
//
//   - HTTPServerService: the chi router behind net/http, shut down gracefully
//   - AuditService: periodic profile drift sweep (RECOMMEND_AUDIT_ENABLED)
//   - CacheJanitorService: eviction of expired recommendation lists
//
// Every wrapper returns ctx.Err() on shutdown and implements fmt.Stringer so
// sutureslog can name it in supervisor events.
package services
