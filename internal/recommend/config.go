// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"fmt"
	"runtime"
	"time"

	"github.com/tomtom215/xrecommender/internal/models"
)

// Config contains all configuration for the recommender.
type Config struct {
	// Likes is the rating value at or above which a rating is favorable.
	// Default: models.LikesThreshold (0.75).
	Likes float64 `json:"likes"`

	// Limits contains request defaults and maximums.
	Limits LimitsConfig `json:"limits"`

	// Workers is the number of goroutines used for neighbor scans and audit
	// sweeps. Default: GOMAXPROCS.
	Workers int `json:"workers"`

	// Cache contains recommendation caching parameters.
	Cache CacheConfig `json:"cache"`

	// Audit contains profile drift detection parameters.
	Audit AuditConfig `json:"audit"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultNeighbors is n when a request leaves it unset.
	// Default: 35.
	DefaultNeighbors int `json:"default_neighbors"`

	// MaxNeighbors is the largest n a request may ask for.
	// Default: 500.
	MaxNeighbors int `json:"max_neighbors"`

	// DefaultK is k when a request leaves it unset.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the largest k a request may ask for.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether recommendation lists are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL bounds how stale a list can be for users whose neighbors changed.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached lists.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// AuditConfig contains profile audit parameters.
type AuditConfig struct {
	// Tolerance is the largest accepted difference between a stored profile
	// and one recomputed from the user's ratings, both for SumRatings and
	// for each embedding component.
	// Default: 1e-6.
	Tolerance float64 `json:"tolerance"`

	// Repair rewrites drifted profiles during a sweep.
	// Default: false.
	Repair bool `json:"repair"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Likes: models.LikesThreshold,
		Limits: LimitsConfig{
			DefaultNeighbors: 35,
			MaxNeighbors:     500,
			DefaultK:         5,
			MaxK:             100,
		},
		Workers: runtime.GOMAXPROCS(0),
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Audit: AuditConfig{
			Tolerance: 1e-6,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Likes <= 0 || c.Likes > 1 {
		return fmt.Errorf("likes must be in (0, 1], got %v", c.Likes)
	}
	if c.Limits.DefaultNeighbors < 1 {
		return fmt.Errorf("limits.default_neighbors must be positive, got %d", c.Limits.DefaultNeighbors)
	}
	if c.Limits.MaxNeighbors < c.Limits.DefaultNeighbors {
		return fmt.Errorf("limits.max_neighbors must be >= limits.default_neighbors, got %d < %d",
			c.Limits.MaxNeighbors, c.Limits.DefaultNeighbors)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}
	if c.Audit.Tolerance <= 0 {
		return fmt.Errorf("audit.tolerance must be positive, got %v", c.Audit.Tolerance)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types
	cp := *c
	return &cp
}

// resolve applies defaults to a requested neighbor count and list size and
// rejects values above the configured maximums.
func (c *Config) resolve(n, k int) (int, int, error) {
	if n <= 0 {
		n = c.Limits.DefaultNeighbors
	}
	if k <= 0 {
		k = c.Limits.DefaultK
	}
	if n > c.Limits.MaxNeighbors {
		return 0, 0, fmt.Errorf("%w: n=%d, max_neighbors is %d", ErrLimitExceeded, n, c.Limits.MaxNeighbors)
	}
	if k > c.Limits.MaxK {
		return 0, 0, fmt.Errorf("%w: k=%d, max_k is %d", ErrLimitExceeded, k, c.Limits.MaxK)
	}
	return n, k, nil
}
