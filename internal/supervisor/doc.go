// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package supervisor provides process supervision using suture v4.

The tree separates background maintenance from request serving:

	RootSupervisor ("xrecommender")
	├── DataSupervisor ("data-layer")
	│   ├── AuditService (if RECOMMEND_AUDIT_ENABLED)
	│   └── CacheJanitorService (if RECOMMEND_CACHE_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff; a failing audit sweep
never takes the HTTP server down with it. Supervisor events are logged
through sutureslog over a slog.Logger that forwards to zerolog.

# Usage Example

	slogger := logging.NewSlogLogger(logging.WithComponent("supervisor"))
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services must return when their context is canceled; anything still running
after ShutdownTimeout shows up in UnstoppedServiceReport.
*/
package supervisor
