// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package config defines the layered service configuration. Defaults
// are declared in code, optionally overridden by a YAML file, then by
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/reelrank/reelrank/internal/recommend"
)

// Config is the root configuration for the ReelRank service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Datasets  DatasetsConfig  `koanf:"datasets"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	// Default: 0.0.0.0
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port.
	// Default: 8780
	Port int `koanf:"port" validate:"gte=1,lte=65535"`

	// ReadTimeout bounds request reads.
	// Default: 15s
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response writes.
	// Default: 30s
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// QueryTimeout is the per-query deadline for recommendation
	// requests. A correlation sweep that exceeds it is aborted.
	// Default: 10s
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location.
	// Default: /data/reelrank.duckdb
	Path string `koanf:"path" validate:"required"`

	// Threads limits DuckDB's thread pool. 0 means runtime.NumCPU().
	// Default: 0
	Threads int `koanf:"threads" validate:"gte=0"`

	// MaxMemory caps DuckDB memory usage.
	// Default: 2GB
	MaxMemory string `koanf:"max_memory" validate:"required"`
}

// DatasetsConfig controls the optional CSV import at startup.
type DatasetsConfig struct {
	// ImportOnStartup loads the CSV files into an empty database.
	// Default: false
	ImportOnStartup bool `koanf:"import_on_startup"`

	// MoviesCSV is the path to the MovieLens movie file.
	MoviesCSV string `koanf:"movies_csv"`

	// RatingsCSV is the path to the MovieLens rating file.
	RatingsCSV string `koanf:"ratings_csv"`
}

// SnapshotConfig controls the badger-backed model snapshot cache.
type SnapshotConfig struct {
	// Enabled turns snapshot persistence on.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// Path is the badger directory.
	// Default: /data/snapshots
	Path string `koanf:"path"`

	// GCInterval is how often badger value-log garbage collection runs.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RecommendConfig holds the engine parameters and training schedule.
type RecommendConfig struct {
	// PopularityFloor is the minimum rating count a movie must strictly
	// exceed to stay in the matrix.
	// Default: 1000
	PopularityFloor int `koanf:"popularity_floor" validate:"gte=0"`

	// OverlapFraction of the target's watched count a neighbor must
	// strictly exceed in shared movies.
	// Default: 0.60
	OverlapFraction float64 `koanf:"overlap_fraction" validate:"gte=0,lte=1"`

	// MinCorrelation a neighbor must reach (inclusive).
	// Default: 0.65
	MinCorrelation float64 `koanf:"min_correlation" validate:"gte=-1,lte=1"`

	// ScoreFloor a movie must strictly exceed in the user-based list.
	// Default: 3.5
	ScoreFloor float64 `koanf:"score_floor"`

	// TopN per strategy.
	// Default: 5
	TopN int `koanf:"top_n" validate:"gt=0"`

	// SeedRatingThreshold for item-based seed selection.
	// Default: 5.0
	SeedRatingThreshold float64 `koanf:"seed_rating_threshold" validate:"gte=0"`

	// NumWorkers for parallel correlation sweeps.
	// Default: 4
	NumWorkers int `koanf:"num_workers" validate:"gt=0"`

	// TrainOnStartup builds the matrix before serving traffic.
	// Default: true
	TrainOnStartup bool `koanf:"train_on_startup"`

	// RebuildInterval triggers periodic retraining.
	// Default: 6h
	// Default: 6h
	RebuildInterval time.Duration `koanf:"rebuild_interval"`
}

// APIConfig holds API surface settings.
type APIConfig struct {
	// RateLimit is the request cap per client per window. 0 disables
	// rate limiting.
	// Default: 100
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`

	// RateLimitWindow is the rate limiting window.
	// Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller info in log lines.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Default returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8780,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			QueryTimeout:    10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/reelrank.duckdb",
			Threads:   0,
			MaxMemory: "2GB",
		},
		Datasets: DatasetsConfig{
			ImportOnStartup: false,
			MoviesCSV:       "",
			RatingsCSV:      "",
		},
		Snapshot: SnapshotConfig{
			Enabled:    true,
			Path:       "/data/snapshots",
			GCInterval: 10 * time.Minute,
		},
		Recommend: RecommendConfig{
			PopularityFloor:     1000,
			OverlapFraction:     0.60,
			MinCorrelation:      0.65,
			ScoreFloor:          3.5,
			TopN:                5,
			SeedRatingThreshold: 5.0,
			NumWorkers:          4,
			TrainOnStartup:      true,
			RebuildInterval:     6 * time.Hour,
		},
		API: APIConfig{
			RateLimit:       100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     nil,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if c.Datasets.ImportOnStartup {
		if c.Datasets.MoviesCSV == "" || c.Datasets.RatingsCSV == "" {
			return fmt.Errorf("config validation: import_on_startup requires movies_csv and ratings_csv")
		}
	}
	if c.Snapshot.Enabled && c.Snapshot.Path == "" {
		return fmt.Errorf("config validation: snapshot.enabled requires snapshot.path")
	}
	return nil
}

// Params converts the recommend section to engine parameters.
func (c *Config) Params() recommend.Params {
	return recommend.Params{
		PopularityFloor:     c.Recommend.PopularityFloor,
		OverlapFraction:     c.Recommend.OverlapFraction,
		MinCorrelation:      c.Recommend.MinCorrelation,
		ScoreFloor:          c.Recommend.ScoreFloor,
		TopN:                c.Recommend.TopN,
		SeedRatingThreshold: c.Recommend.SeedRatingThreshold,
		NumWorkers:          c.Recommend.NumWorkers,
	}
}
