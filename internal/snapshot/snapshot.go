// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package snapshot caches the engine's training data in badger so a
// restart can skip the DuckDB scan when the dataset has not changed.
// The cached model is validated against the store fingerprint before
// use; a stale snapshot is treated as a miss, never served.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// ErrNoSnapshot is returned when no usable snapshot exists, either
// because none was saved or because the stored one is stale.
var ErrNoSnapshot = errors.New("snapshot: no usable snapshot")

// modelKey is the single key holding the current model blob.
var modelKey = []byte("model/current")

// Model is the persisted training snapshot. Events keep their ingestion
// order; the matrix itself is rebuilt from them on restore, so a change
// of engine parameters never serves stale filtering.
type Model struct {
	Fingerprint string
	BuiltAt     time.Time
	Events      []recommend.RatingEvent
	Items       []recommend.Item
}

// Store wraps the badger database holding snapshots.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (or creates) the snapshot store.
func Open(cfg *config.SnapshotConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	return &Store{
		db:     db,
		logger: logging.WithComponent("snapshot"),
	}, nil
}

// Save persists the model, replacing any previous snapshot.
func (s *Store) Save(model *Model) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(model); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(modelKey, buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	metrics.SnapshotBytes.Set(float64(buf.Len()))
	s.logger.Info().
		Str("fingerprint", model.Fingerprint).
		Int("events", len(model.Events)).
		Int("items", len(model.Items)).
		Int("bytes", buf.Len()).
		Msg("snapshot saved")

	return nil
}

// Load returns the stored model if its fingerprint matches the current
// dataset state. Anything else is ErrNoSnapshot.
func (s *Store) Load(fingerprint string) (*Model, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.SnapshotMisses.Inc()
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer zr.Close()

	var model Model
	if err := gob.NewDecoder(zr).Decode(&model); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if model.Fingerprint != fingerprint {
		metrics.SnapshotMisses.Inc()
		s.logger.Info().
			Str("stored", model.Fingerprint).
			Str("current", fingerprint).
			Msg("snapshot stale, dataset changed")
		return nil, ErrNoSnapshot
	}

	metrics.SnapshotHits.Inc()
	s.logger.Info().
		Str("fingerprint", model.Fingerprint).
		Time("built_at", model.BuiltAt).
		Msg("snapshot loaded")

	return &model, nil
}

// RunGC runs one round of badger value-log garbage collection.
// badger.ErrNoRewrite means there was nothing to collect.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("snapshot gc: %w", err)
	}
	return nil
}

// Close closes the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}
