// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

// Package logging provides centralized zerolog-based structured logging.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from main
//   - JSON output for production, console output for development
//   - Request and correlation IDs carried in context.Context
//   - An slog.Handler so sutureslog writes into the same stream
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Int("user_id", id).Msg("Profile drift detected")
//
// # Component Loggers
//
// Long-lived components receive a zerolog.Logger and tag it:
//
//	logger = logger.With().Str("component", "neighbor_finder").Logger()
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(), and prefer structured
// fields over Msgf.
package logging
