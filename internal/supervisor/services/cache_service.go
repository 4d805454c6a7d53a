// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheCleaner drops expired cache entries. Satisfied by *recommend.Engine.
type CacheCleaner interface {
	CleanupCache() int
}

// CacheJanitorService evicts expired recommendation lists on an interval so
// lists of idle users do not hold memory until LRU pressure removes them.
type CacheJanitorService struct {
	cache    CacheCleaner
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheJanitorService creates a janitor. A non-positive interval becomes 1m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(cache CacheCleaner, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.cache.CleanupCache(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("expired recommendation lists evicted")
			}
		}
	}
}

// String returns the service name for logging.
func (s *CacheJanitorService) String() string {
	return "cache-janitor"
}
