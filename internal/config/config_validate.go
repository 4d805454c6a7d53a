// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/xrecommender/internal/logging"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates the HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

// validateDatabase validates the badger configuration
func (c *Config) validateDatabase() error {
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	return nil
}

// validateRecommend validates recommender settings
func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.Dimension <= 0 {
		return fmt.Errorf("RECOMMEND_DIMENSION must be positive, got %d", r.Dimension)
	}
	if r.Workers < 0 {
		return fmt.Errorf("RECOMMEND_WORKERS must not be negative, got %d", r.Workers)
	}
	if r.AuditEnabled && r.AuditInterval <= 0 {
		return fmt.Errorf("RECOMMEND_AUDIT_INTERVAL must be positive when auditing is enabled, got %v", r.AuditInterval)
	}
	// Thresholds, limits, cache and tolerance share the engine's own checks
	if err := c.RecommenderConfig().Validate(); err != nil {
		return fmt.Errorf("invalid recommend configuration: %w", err)
	}
	return nil
}

// validateSecurity validates rate limiting settings
func (c *Config) validateSecurity() error {
	return c.validateRateLimits()
}

// validateRateLimits bounds the httprate limiter settings
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second || c.Security.RateLimitWindow > time.Hour {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

// validateLogging validates the logging configuration
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
