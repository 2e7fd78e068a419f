// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Command server runs the ReelRank recommendation API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/snapshot"
	"github.com/reelrank/reelrank/internal/store"
	"github.com/reelrank/reelrank/internal/supervisor"
	"github.com/reelrank/reelrank/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Bool("snapshots", cfg.Snapshot.Enabled).
		Msg("Starting ReelRank")

	db, err := store.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Datasets.ImportOnStartup {
		logging.Info().
			Str("movies", cfg.Datasets.MoviesCSV).
			Str("ratings", cfg.Datasets.RatingsCSV).
			Msg("Importing datasets")
		if err := db.ImportCSV(ctx, cfg.Datasets.MoviesCSV, cfg.Datasets.RatingsCSV); err != nil {
			logging.Fatal().Err(err).Msg("Dataset import failed")
		}
	}

	engine, err := recommend.NewEngine(cfg.Params(), logging.WithComponent("engine"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid recommendation parameters")
	}
	engine.SetDataProvider(db)

	var snapshots *snapshot.Store
	if cfg.Snapshot.Enabled {
		snapshots, err = snapshot.Open(&cfg.Snapshot)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open snapshot store")
		}
		defer func() {
			if err := snapshots.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing snapshot store")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.New(engine, db, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// A disabled snapshot store must reach the service as a nil
	// interface, not a nil *snapshot.Store.
	var snapStore services.SnapshotStore
	if snapshots != nil {
		snapStore = snapshots
	}
	tree.AddModelService(services.NewRebuildService(engine, db, snapStore, services.RebuildServiceConfig{
		TrainOnStartup:  cfg.Recommend.TrainOnStartup,
		RebuildInterval: cfg.Recommend.RebuildInterval,
	}, logging.WithComponent("rebuild")))
	if snapshots != nil {
		tree.AddModelService(services.NewSnapshotGCService(snapshots, cfg.Snapshot.GCInterval, logging.WithComponent("snapshot-gc")))
	}

	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Stopped gracefully")
}
