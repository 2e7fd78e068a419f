// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ValueLogGC is the snapshot store surface the GC loop needs.
type ValueLogGC interface {
	RunGC() error
}

// SnapshotGCService periodically reclaims space in the snapshot store's
// value log.
type SnapshotGCService struct {
	store    ValueLogGC
	interval time.Duration
	logger   zerolog.Logger
}

// NewSnapshotGCService creates the GC loop. A non-positive interval
// falls back to 10 minutes.
func NewSnapshotGCService(store ValueLogGC, interval time.Duration, logger zerolog.Logger) *SnapshotGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SnapshotGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "snapshot-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (s *SnapshotGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("value log gc failed")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *SnapshotGCService) String() string {
	return "snapshot-gc"
}
