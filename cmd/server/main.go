// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/xrecommender/internal/api"
	"github.com/tomtom215/xrecommender/internal/config"
	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/recommend"
	"github.com/tomtom215/xrecommender/internal/supervisor"
	"github.com/tomtom215/xrecommender/internal/supervisor/services"
)

//nolint:gocyclo // sequential startup wiring
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingOptions())
	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Bool("in_memory", cfg.Database.InMemory).
		Int("dimension", cfg.Recommend.Dimension).
		Msg("Starting Xrecommender with supervisor tree")

	db, err := database.Open(cfg.DatabaseOptions(), logging.WithComponent("database"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	rc := cfg.RecommenderConfig()
	recLogger := logging.WithComponent("recommend")

	updater := recommend.NewUpdater(db, rc, recLogger)
	engine, err := recommend.NewEngine(db, rc, recLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	updater.SetInvalidator(engine)
	explainer := recommend.NewExplainer(db, rc, recLogger)
	auditor := recommend.NewAuditor(db, updater, rc, recLogger)

	handler := api.NewHandler(db, updater, engine, explainer)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===

	treeConfig := supervisor.DefaultTreeConfig()
	if cfg.Server.ShutdownTimeout > 0 {
		treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		treeConfig,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	serviceLogger := logging.WithComponent("services")

	if cfg.Recommend.AuditEnabled {
		tree.AddDataService(services.NewAuditService(auditor, services.AuditServiceConfig{
			Interval: cfg.Recommend.AuditInterval,
		}, serviceLogger))
		logging.Info().
			Dur("interval", cfg.Recommend.AuditInterval).
			Bool("repair", cfg.Recommend.AuditRepair).
			Msg("Profile audit added to supervisor tree")
	}

	if cfg.Recommend.CacheEnabled {
		tree.AddDataService(services.NewCacheJanitorService(engine, cfg.Recommend.CacheTTL, serviceLogger))
		logging.Info().
			Dur("ttl", cfg.Recommend.CacheTTL).
			Int("max_entries", cfg.Recommend.CacheMaxEntries).
			Msg("Recommendation cache janitor added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, serviceLogger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
