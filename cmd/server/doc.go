// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package main is the entry point for the Xrecommender server.

Xrecommender serves content-based book recommendations with an explanation
of which keywords connect a user's liked books to the books recommended to
them. Ratings update a per-user profile embedding incrementally; neighbors
are found by cosine similarity over those profiles.

# Application Architecture

	RootSupervisor ("xrecommender")
	├── DataSupervisor ("data-layer")
	│   ├── Profile audit (RECOMMEND_AUDIT_ENABLED)
	│   └── Cache janitor (RECOMMEND_CACHE_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Database: BadgerDB (on disk or in memory)
 4. Recommender: profile updater, engine with result cache, explainer, auditor
 5. HTTP Server: chi router with CORS, rate limiting and Prometheus metrics
 6. Supervisor Tree: Suture v4 process supervision

# Configuration

Commonly used environment variables:
  - HTTP_PORT, HTTP_HOST: listen address (default 0.0.0.0:8080)
  - BADGER_PATH: database directory; BADGER_IN_MEMORY=true for a throwaway store
  - RECOMMEND_DIMENSION: length of book and user embeddings
  - RECOMMEND_LIKES: rating threshold for a favorable rating
  - RECOMMEND_AUDIT_ENABLED, RECOMMEND_AUDIT_INTERVAL: profile drift sweep
  - LOG_LEVEL, LOG_FORMAT: logging

See internal/config for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests within the shutdown timeout, background services return, and the
database is closed last.
*/
package main
