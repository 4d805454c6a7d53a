// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package config provides centralized configuration management for xrecommender.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, or config.yaml in the working directory, or
/etc/xrecommender/config.yaml), then environment variables.

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT

Database:
  - BADGER_PATH: Badger directory (default: /data/xrecommender)
  - BADGER_IN_MEMORY: Keep data in memory only (default: false)
  - BADGER_SYNC_WRITES: fsync every commit (default: true)

Recommender:
  - RECOMMEND_DIMENSION: Embedding length (default: 768)
  - RECOMMEND_LIKES: Favorable rating threshold (default: 0.75)
  - RECOMMEND_DEFAULT_NEIGHBORS, RECOMMEND_MAX_NEIGHBORS (default: 35, 500)
  - RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K (default: 5, 100)
  - RECOMMEND_WORKERS: Scan parallelism, 0 = GOMAXPROCS
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES
  - RECOMMEND_AUDIT_ENABLED, RECOMMEND_AUDIT_INTERVAL, RECOMMEND_AUDIT_TOLERANCE, RECOMMEND_AUDIT_REPAIR

Security:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: Comma-separated origins (default: *)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include file:line (default: false)

# Example YAML

	server:
	  port: 8080
	database:
	  path: /var/lib/xrecommender
	recommend:
	  dimension: 384
	  cache_ttl: 2m
	  audit_enabled: true
	logging:
	  level: debug
	  format: console
*/
package config
