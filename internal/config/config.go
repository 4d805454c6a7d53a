// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.Open(cfg.DatabaseOptions(), logger)
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds BadgerDB settings.
type DatabaseConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps all data in memory. Useful for demos and tests.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every commit.
	SyncWrites bool `koanf:"sync_writes"`
}

// RecommendConfig holds recommender settings.
type RecommendConfig struct {
	// Dimension is the embedding length shared by users and books.
	Dimension int `koanf:"dimension"`

	// Likes is the rating value at or above which a rating counts as favorable.
	Likes float64 `koanf:"likes"`

	DefaultNeighbors int `koanf:"default_neighbors"`
	MaxNeighbors     int `koanf:"max_neighbors"`
	DefaultK         int `koanf:"default_k"`
	MaxK             int `koanf:"max_k"`

	// Workers bounds neighbor scan and audit sweep parallelism.
	// 0 means GOMAXPROCS.
	Workers int `koanf:"workers"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	// AuditEnabled runs the periodic profile drift sweep.
	AuditEnabled   bool          `koanf:"audit_enabled"`
	AuditInterval  time.Duration `koanf:"audit_interval"`
	AuditTolerance float64       `koanf:"audit_tolerance"`
	AuditRepair    bool          `koanf:"audit_repair"`
}

// SecurityConfig holds HTTP protection settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and
// environment variables, in that order of precedence (last wins).
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// DatabaseOptions converts the database and recommend sections into
// database.Options.
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		Path:       c.Database.Path,
		InMemory:   c.Database.InMemory,
		SyncWrites: c.Database.SyncWrites,
		Dimension:  c.Recommend.Dimension,
	}
}

// RecommenderConfig converts the recommend section into a recommend.Config.
// Unset worker counts keep the recommend package default.
func (c *Config) RecommenderConfig() *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.Likes = c.Recommend.Likes
	rc.Limits = recommend.LimitsConfig{
		DefaultNeighbors: c.Recommend.DefaultNeighbors,
		MaxNeighbors:     c.Recommend.MaxNeighbors,
		DefaultK:         c.Recommend.DefaultK,
		MaxK:             c.Recommend.MaxK,
	}
	if c.Recommend.Workers > 0 {
		rc.Workers = c.Recommend.Workers
	}
	rc.Cache = recommend.CacheConfig{
		Enabled:    c.Recommend.CacheEnabled,
		TTL:        c.Recommend.CacheTTL,
		MaxEntries: c.Recommend.CacheMaxEntries,
	}
	rc.Audit = recommend.AuditConfig{
		Tolerance: c.Recommend.AuditTolerance,
		Repair:    c.Recommend.AuditRepair,
	}
	return rc
}

// LoggingOptions converts the logging section into a logging.Config.
func (c *Config) LoggingOptions() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}
