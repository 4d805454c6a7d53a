// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/recommend"
)

// ProfileAuditor sweeps every stored profile for drift.
// Satisfied by *recommend.Auditor.
type ProfileAuditor interface {
	Sweep(ctx context.Context) (*recommend.AuditReport, error)
}

// AuditServiceConfig holds configuration for the audit service.
type AuditServiceConfig struct {
	// Interval between sweeps.
	Interval time.Duration

	// RunOnStartup sweeps once before the first tick.
	RunOnStartup bool

	// SweepTimeout bounds one sweep. Default: 30m
	SweepTimeout time.Duration
}

// AuditService periodically rebuilds profiles from ratings and reports (or,
// when the auditor is configured to, repairs) drift.
type AuditService struct {
	auditor ProfileAuditor
	config  AuditServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewAuditService creates a new audit service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAuditService(auditor ProfileAuditor, cfg AuditServiceConfig, logger zerolog.Logger) *AuditService {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 30 * time.Minute
	}
	return &AuditService{
		auditor: auditor,
		config:  cfg,
		logger:  logger.With().Str("service", "profile-audit").Logger(),
		name:    "profile-audit",
	}
}

// Serve implements suture.Service. A failed sweep is logged and retried on
// the next tick rather than restarting the service.
func (s *AuditService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("run_on_startup", s.config.RunOnStartup).
		Msg("profile audit service starting")

	if s.config.RunOnStartup {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("profile audit service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *AuditService) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	report, err := s.auditor.Sweep(sweepCtx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("profile audit sweep failed")
		}
		return
	}

	event := s.logger.Info()
	if len(report.Drifted) > 0 {
		event = s.logger.Warn()
	}
	event.
		Int("checked", report.Checked).
		Int("drifted", len(report.Drifted)).
		Int("repaired", report.Repaired).
		Dur("duration", report.Duration).
		Msg("profile audit sweep complete")
}

// String returns the service name for logging.
func (s *AuditService) String() string {
	return s.name
}
