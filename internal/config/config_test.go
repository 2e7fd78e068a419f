// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Recommend.PopularityFloor != 1000 {
		t.Errorf("popularity floor = %d, want 1000", cfg.Recommend.PopularityFloor)
	}
	if cfg.Recommend.OverlapFraction != 0.60 {
		t.Errorf("overlap fraction = %g, want 0.60", cfg.Recommend.OverlapFraction)
	}
	if cfg.Recommend.MinCorrelation != 0.65 {
		t.Errorf("min correlation = %g, want 0.65", cfg.Recommend.MinCorrelation)
	}
	if cfg.Recommend.ScoreFloor != 3.5 {
		t.Errorf("score floor = %g, want 3.5", cfg.Recommend.ScoreFloor)
	}
	if cfg.Recommend.TopN != 5 {
		t.Errorf("top N = %d, want 5", cfg.Recommend.TopN)
	}
	if cfg.Recommend.SeedRatingThreshold != 5.0 {
		t.Errorf("seed threshold = %g, want 5.0", cfg.Recommend.SeedRatingThreshold)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "overlap fraction above one", mutate: func(c *Config) { c.Recommend.OverlapFraction = 1.5 }},
		{name: "zero top n", mutate: func(c *Config) { c.Recommend.TopN = 0 }},
		{name: "zero workers", mutate: func(c *Config) { c.Recommend.NumWorkers = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		{name: "empty db path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "import without csv paths", mutate: func(c *Config) { c.Datasets.ImportOnStartup = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid config")
			}
		})
	}
}

func TestParamsConversion(t *testing.T) {
	cfg := Default()
	cfg.Recommend.PopularityFloor = 50
	cfg.Recommend.TopN = 3

	p := cfg.Params()
	if p.PopularityFloor != 50 || p.TopN != 3 {
		t.Errorf("params = %+v, want floor 50 topN 3", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("converted params invalid: %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9000\nrecommend:\n  top_n: 7\n  rebuild_interval: 1h\n"
	if err := os.WriteFile(yamlPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, yamlPath)
	t.Setenv("RECOMMEND_TOP_N", "9")
	t.Setenv("DUCKDB_PATH", filepath.Join(dir, "db.duckdb"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// File overrides default.
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000 from file", cfg.Server.Port)
	}
	if cfg.Recommend.RebuildInterval != time.Hour {
		t.Errorf("rebuild interval = %v, want 1h from file", cfg.Recommend.RebuildInterval)
	}
	// Env overrides file.
	if cfg.Recommend.TopN != 9 {
		t.Errorf("top N = %d, want 9 from env", cfg.Recommend.TopN)
	}
	// Env alias maps to nested path.
	if cfg.Database.Path != filepath.Join(dir, "db.duckdb") {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	// Untouched values keep defaults.
	if cfg.Recommend.PopularityFloor != 1000 {
		t.Errorf("popularity floor = %d, want default 1000", cfg.Recommend.PopularityFloor)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "HTTP_PORT", want: "server.port"},
		{in: "DUCKDB_PATH", want: "database.path"},
		{in: "LOG_LEVEL", want: "logging.level"},
		{in: "RECOMMEND_POPULARITY_FLOOR", want: "recommend.popularity_floor"},
		{in: "SNAPSHOT_PATH", want: "snapshot.path"},
		{in: "API_RATE_LIMIT", want: "api.rate_limit"},
		{in: "PATH", want: ""},
		{in: "HOME", want: ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
