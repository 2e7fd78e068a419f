// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package store persists rating events and movie metadata in DuckDB and
// implements recommend.DataProvider. Rating rows carry a monotonically
// increasing sequence number so the engine always sees events in
// ingestion order, which the seed-selection tie-break depends on.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the database and initializes the schema.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	if dbDir := filepath.Dir(cfg.Path); dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
		}
	}

	// Auto-install/auto-load stay disabled so startup cannot hang in
	// restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: logging.WithComponent("store"),
	}

	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	db.logger.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("database opened")
	return db, nil
}

func (db *DB) initSchema() error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS ratings_seq`,
		`CREATE TABLE IF NOT EXISTS movies (
			movie_id INTEGER PRIMARY KEY,
			title    VARCHAR NOT NULL,
			genres   VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			seq      BIGINT DEFAULT nextval('ratings_seq'),
			user_id  INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			rating   DOUBLE  NOT NULL,
			rated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// ImportCSV bulk-loads MovieLens-style movie and rating CSV files.
// Existing rows are kept; rerunning an import appends, so callers
// normally import into a fresh database.
func (db *DB) ImportCSV(ctx context.Context, moviesPath, ratingsPath string) error {
	start := time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO movies (movie_id, title, genres)
		 SELECT movieId, title, genres FROM read_csv_auto(?)`, moviesPath)
	metrics.RecordDBQuery("import", "movies", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("import movies from %s: %w", moviesPath, err)
	}
	movieRows, _ := res.RowsAffected()

	ratingStart := time.Now()
	res, err = db.conn.ExecContext(ctx,
		`INSERT INTO ratings (user_id, movie_id, rating, rated_at)
		 SELECT userId, movieId, rating, CAST("timestamp" AS TIMESTAMP)
		 FROM read_csv_auto(?)`, ratingsPath)
	metrics.RecordDBQuery("import", "ratings", time.Since(ratingStart), err)
	if err != nil {
		return fmt.Errorf("import ratings from %s: %w", ratingsPath, err)
	}
	ratingRows, _ := res.RowsAffected()

	db.logger.Info().
		Int64("movies", movieRows).
		Int64("ratings", ratingRows).
		Dur("duration", time.Since(start)).
		Msg("CSV import complete")

	return nil
}

// GetRatingEvents returns all rating events in ingestion order.
func (db *DB) GetRatingEvents(ctx context.Context) ([]recommend.RatingEvent, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, movie_id, rating, rated_at FROM ratings ORDER BY seq`)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var events []recommend.RatingEvent
	for rows.Next() {
		var ev recommend.RatingEvent
		if err := rows.Scan(&ev.UserID, &ev.MovieID, &ev.Rating, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return events, nil
}

// GetItems returns all movie metadata records.
func (db *DB) GetItems(ctx context.Context) ([]recommend.Item, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT movie_id, title, COALESCE(genres, '') FROM movies ORDER BY movie_id`)
	metrics.RecordDBQuery("select", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var items []recommend.Item
	for rows.Next() {
		var (
			item   recommend.Item
			genres string
		)
		if err := rows.Scan(&item.MovieID, &item.Title, &genres); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		item.Genres = splitGenres(genres)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return items, nil
}

// Fingerprint identifies the current dataset state. It changes whenever
// rows are added, which is what snapshot validation needs. Computed
// from the row count and the highest sequence number.
func (db *DB) Fingerprint(ctx context.Context) (string, error) {
	start := time.Now()
	var count, maxSeq int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(seq), 0) FROM ratings`).Scan(&count, &maxSeq)
	metrics.RecordDBQuery("fingerprint", "ratings", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("fingerprint ratings: %w", err)
	}
	return fmt.Sprintf("r%d-s%d", count, maxSeq), nil
}

// Counts returns the number of stored movies and ratings.
func (db *DB) Counts(ctx context.Context) (movies, ratings int64, err error) {
	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&movies); err != nil {
		return 0, 0, fmt.Errorf("count movies: %w", err)
	}
	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&ratings); err != nil {
		return 0, 0, fmt.Errorf("count ratings: %w", err)
	}
	return movies, ratings, nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// splitGenres splits the MovieLens pipe-separated genre field.
func splitGenres(s string) []string {
	if s == "" || s == "(no genres listed)" {
		return nil
	}
	return strings.Split(s, "|")
}

// firstLine truncates a SQL statement for error messages.
func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}

// Compile-time check that the store satisfies the engine's interface.
var _ recommend.DataProvider = (*DB)(nil)
