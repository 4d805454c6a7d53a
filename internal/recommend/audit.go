// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/metrics"
)

// Drift compares a stored profile with one rebuilt from the user's ratings.
type Drift struct {
	UserID      int     `json:"user_id"`
	StoredSum   float64 `json:"stored_sum"`
	ExpectedSum float64 `json:"expected_sum"`

	// MaxDelta is the largest absolute difference between a stored and a
	// rebuilt embedding component.
	MaxDelta float64 `json:"max_delta"`

	Drifted  bool `json:"drifted"`
	Repaired bool `json:"repaired"`
}

// AuditReport summarizes a sweep.
type AuditReport struct {
	Checked  int           `json:"checked"`
	Drifted  []Drift       `json:"drifted"`
	Repaired int           `json:"repaired"`
	Duration time.Duration `json:"duration"`
}

// Auditor rebuilds profiles from scratch and compares them with the
// incrementally maintained ones.
type Auditor struct {
	store   Store
	updater *Updater
	cfg     *Config
	logger  zerolog.Logger
}

// NewAuditor creates an Auditor. Repairs take the updater's per-user lock so
// they never interleave with rating mutations.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAuditor(store Store, updater *Updater, cfg *Config, logger zerolog.Logger) *Auditor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Auditor{
		store:   store,
		updater: updater,
		cfg:     cfg,
		logger:  logger.With().Str("component", "profile_auditor").Logger(),
	}
}

// Check reports how far userID's stored profile is from its rebuilt value.
func (a *Auditor) Check(ctx context.Context, userID int) (Drift, error) {
	var d Drift
	err := a.store.ViewProfile(ctx, userID, func(tx *database.ProfileTx) error {
		var err error
		d, _, _, err = a.compare(tx)
		return err
	})
	return d, err
}

// Repair rewrites userID's profile from its ratings when it has drifted.
func (a *Auditor) Repair(ctx context.Context, userID int) (Drift, error) {
	unlock := a.updater.locks.lock(userID)
	var d Drift
	err := a.store.UpdateProfile(ctx, userID, func(tx *database.ProfileTx) error {
		var (
			emb, acc embedding.Vector
			err      error
		)
		d, emb, acc, err = a.compare(tx)
		if err != nil || !d.Drifted {
			return err
		}
		if err := tx.SaveProfile(emb, acc, d.ExpectedSum); err != nil {
			return err
		}
		d.Repaired = true
		return nil
	})
	unlock()

	if d.Drifted {
		metrics.RecordProfileRepair(err)
	}
	if err != nil {
		return d, err
	}
	if d.Repaired {
		a.updater.notify(userID)
		a.logger.Warn().
			Int("user_id", userID).
			Float64("stored_sum", d.StoredSum).
			Float64("expected_sum", d.ExpectedSum).
			Float64("max_delta", d.MaxDelta).
			Msg("profile repaired")
	}
	return d, nil
}

// Sweep checks every user, repairing drifted profiles when configured to.
func (a *Auditor) Sweep(ctx context.Context) (*AuditReport, error) {
	start := time.Now()
	report := &AuditReport{Drifted: []Drift{}}

	ids, err := a.store.UserIDs(ctx)
	if err != nil {
		metrics.RecordProfileAudit(time.Since(start), 0, err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for _, id := range ids {
		g.Go(func() error {
			var (
				d   Drift
				err error
			)
			if a.cfg.Audit.Repair {
				d, err = a.Repair(gctx, id)
			} else {
				d, err = a.Check(gctx, id)
			}
			if err != nil {
				return fmt.Errorf("user %d: %w", id, err)
			}
			mu.Lock()
			report.Checked++
			if d.Drifted {
				report.Drifted = append(report.Drifted, d)
			}
			if d.Repaired {
				report.Repaired++
			}
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	report.Duration = time.Since(start)
	sort.Slice(report.Drifted, func(i, j int) bool { return report.Drifted[i].UserID < report.Drifted[j].UserID })

	metrics.RecordProfileAudit(report.Duration, len(report.Drifted), err)
	if err != nil {
		return report, err
	}

	a.logger.Info().
		Int("checked", report.Checked).
		Int("drifted", len(report.Drifted)).
		Int("repaired", report.Repaired).
		Dur("duration", report.Duration).
		Msg("profile audit complete")

	return report, nil
}

// compare rebuilds the profile inside tx and measures the difference.
func (a *Auditor) compare(tx *database.ProfileTx) (Drift, embedding.Vector, embedding.Vector, error) {
	user := tx.User()
	emb, acc, sum, err := rebuildProfile(tx, a.cfg.Likes)
	if err != nil {
		return Drift{}, nil, nil, err
	}

	d := Drift{
		UserID:      user.ID,
		StoredSum:   user.SumRatings,
		ExpectedSum: sum,
	}
	if len(user.Embedding) != len(emb) {
		d.MaxDelta = math.Inf(1)
	} else {
		for i := range emb {
			d.MaxDelta = math.Max(d.MaxDelta, math.Abs(user.Embedding[i]-emb[i]))
		}
	}
	tol := a.cfg.Audit.Tolerance
	d.Drifted = math.Abs(d.StoredSum-d.ExpectedSum) > tol || d.MaxDelta > tol
	return d, emb, acc, nil
}

// rebuildProfile folds every favorable rating in ascending book order.
func rebuildProfile(tx *database.ProfileTx, likes float64) (emb, acc embedding.Vector, sum float64, err error) {
	ratings, err := tx.Ratings()
	if err != nil {
		return nil, nil, 0, err
	}
	acc = embedding.Zero(tx.Dimension())
	for _, r := range ratings {
		w := contribution(r.Value, likes)
		if w == 0 {
			continue
		}
		bookEmb, err := tx.BookEmbedding(r.BookID)
		if err != nil {
			return nil, nil, 0, err
		}
		if err := bookEmb.CheckDim(acc.Dim()); err != nil {
			return nil, nil, 0, fmt.Errorf("book %d: %w", r.BookID, err)
		}
		embedding.AddScaled(acc, w, bookEmb)
		sum += w
	}
	emb, acc, sum = settleProfile(acc, sum)
	return emb, acc, sum, nil
}
