// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/snapshot"
)

// ModelTrainer is the engine surface the rebuild loop drives.
type ModelTrainer interface {
	Train(ctx context.Context, events []recommend.RatingEvent, items []recommend.Item) error
	Ready() bool
}

// TrainingSource supplies training data and a fingerprint identifying
// the dataset's current state.
type TrainingSource interface {
	recommend.DataProvider
	Fingerprint(ctx context.Context) (string, error)
}

// SnapshotStore persists training data between restarts so a restart
// with an unchanged dataset skips the database scan.
type SnapshotStore interface {
	Load(fingerprint string) (*snapshot.Model, error)
	Save(model *snapshot.Model) error
}

// RebuildServiceConfig configures the training lifecycle.
type RebuildServiceConfig struct {
	// TrainOnStartup trains immediately when the service starts.
	TrainOnStartup bool

	// RebuildInterval is how often the model is retrained from the
	// database. Zero or negative falls back to 6h.
	RebuildInterval time.Duration

	// TrainTimeout bounds a single training cycle. Default: 30m.
	TrainTimeout time.Duration
}

// RebuildService trains the engine on startup and retrains it on a
// schedule. On startup it tries the snapshot store first and falls back
// to a full database load; every successful database load refreshes the
// snapshot.
type RebuildService struct {
	engine    ModelTrainer
	source    TrainingSource
	snapshots SnapshotStore
	config    RebuildServiceConfig
	logger    zerolog.Logger
}

// NewRebuildService creates the training service. snapshots may be nil
// when snapshot persistence is disabled.
func NewRebuildService(engine ModelTrainer, source TrainingSource, snapshots SnapshotStore, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	if cfg.RebuildInterval <= 0 {
		cfg.RebuildInterval = 6 * time.Hour
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &RebuildService{
		engine:    engine,
		source:    source,
		snapshots: snapshots,
		config:    cfg,
		logger:    logger.With().Str("service", "rebuild").Logger(),
	}
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	if s.config.TrainOnStartup && !s.engine.Ready() {
		if err := s.startup(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			s.logger.Warn().Err(err).Msg("initial training failed, will retry on schedule")
		}
	}

	ticker := time.NewTicker(s.config.RebuildInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := s.rebuild(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return ctx.Err()
				}
				s.logger.Warn().Err(err).Msg("scheduled rebuild failed")
			}
		}
	}
}

// startup restores from snapshot when the stored fingerprint matches
// the database, otherwise rebuilds from scratch.
func (s *RebuildService) startup(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	if s.snapshots != nil {
		fingerprint, err := s.source.Fingerprint(trainCtx)
		if err != nil {
			return err
		}
		model, err := s.snapshots.Load(fingerprint)
		switch {
		case err == nil:
			s.logger.Info().Str("fingerprint", fingerprint).Msg("restoring model from snapshot")
			return s.engine.Train(trainCtx, model.Events, model.Items)
		case errors.Is(err, snapshot.ErrNoSnapshot):
			// fall through to a full rebuild
		default:
			s.logger.Warn().Err(err).Msg("snapshot load failed, rebuilding from database")
		}
	}

	return s.rebuild(ctx)
}

// rebuild loads the full dataset from the database, trains, and
// refreshes the snapshot.
func (s *RebuildService) rebuild(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	events, err := s.source.GetRatingEvents(trainCtx)
	if err != nil {
		return err
	}
	items, err := s.source.GetItems(trainCtx)
	if err != nil {
		return err
	}
	if err := s.engine.Train(trainCtx, events, items); err != nil {
		return err
	}
	s.logger.Info().
		Int("events", len(events)).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("model rebuilt")

	if s.snapshots == nil {
		return nil
	}
	fingerprint, err := s.source.Fingerprint(trainCtx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("fingerprint failed, snapshot not refreshed")
		return nil
	}
	if err := s.snapshots.Save(&snapshot.Model{
		Fingerprint: fingerprint,
		BuiltAt:     time.Now().UTC(),
		Events:      events,
		Items:       items,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot save failed")
	}
	return nil
}

// String identifies the service in supervisor logs.
func (s *RebuildService) String() string {
	return "rebuild-service"
}
