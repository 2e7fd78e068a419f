// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Engine coordinates the two strategies over a shared immutable matrix
// snapshot. Building the matrix is a single write phase guarded by a
// lock; queries hold a shared lock against the snapshot being swapped
// mid-flight, and all computation on a snapshot is read-only, so
// concurrent queries need no further coordination.
type Engine struct {
	params Params
	logger zerolog.Logger

	// mu guards model swaps; queries read the snapshot under RLock.
	mu    sync.RWMutex
	model *model

	provider DataProvider
}

// model is one immutable training snapshot.
type model struct {
	matrix  *Matrix
	events  []RatingEvent
	titles  map[int]string
	builtAt time.Time
	version int
}

// NewEngine creates a recommendation engine with the given parameters.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(params Params, logger zerolog.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &Engine{
		params: params,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetDataProvider sets the data source used by Rebuild.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.provider = dp
}

// Params returns the engine's configured default parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Train builds a new matrix snapshot from the given events and items
// and atomically swaps it in. Queries running against the previous
// snapshot are unaffected.
func (e *Engine) Train(ctx context.Context, events []RatingEvent, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	matrix, err := BuildMatrix(events, e.params.PopularityFloor)
	if err != nil {
		metrics.RecordMatrixBuild(time.Since(start), 0, 0, 0, err)
		return fmt.Errorf("build matrix: %w", err)
	}

	titles := make(map[int]string, len(items))
	for i := range items {
		titles[items[i].MovieID] = items[i].Title
	}

	e.mu.Lock()
	version := 1
	if e.model != nil {
		version = e.model.version + 1
	}
	e.model = &model{
		matrix:  matrix,
		events:  events,
		titles:  titles,
		builtAt: time.Now(),
		version: version,
	}
	e.mu.Unlock()

	metrics.RecordMatrixBuild(time.Since(start), matrix.Users(), matrix.Items(), matrix.Ratings(), nil)
	e.logger.Info().
		Int("users", matrix.Users()).
		Int("movies", matrix.Items()).
		Int("ratings", matrix.Ratings()).
		Int("version", version).
		Dur("duration", time.Since(start)).
		Msg("matrix built")

	return nil
}

// Rebuild loads events and items from the data provider and trains.
func (e *Engine) Rebuild(ctx context.Context) error {
	if e.provider == nil {
		return fmt.Errorf("rebuild: no data provider configured")
	}

	events, err := e.provider.GetRatingEvents(ctx)
	if err != nil {
		return fmt.Errorf("load rating events: %w", err)
	}
	items, err := e.provider.GetItems(ctx)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	return e.Train(ctx, events, items)
}

// Ready reports whether a matrix snapshot is available for queries.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model != nil
}

// ModelInfo describes the current training snapshot.
type ModelInfo struct {
	Version int       `json:"version"`
	BuiltAt time.Time `json:"built_at"`
	Users   int       `json:"users"`
	Movies  int       `json:"movies"`
	Ratings int       `json:"ratings"`
}

// Info returns metadata about the current snapshot, or ErrNotReady.
func (e *Engine) Info() (ModelInfo, error) {
	mdl, err := e.snapshot()
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{
		Version: mdl.version,
		BuiltAt: mdl.builtAt,
		Users:   mdl.matrix.Users(),
		Movies:  mdl.matrix.Items(),
		Ratings: mdl.matrix.Ratings(),
	}, nil
}

// Hybrid runs both strategies concurrently for the target user and
// returns their independent top-N lists side by side. There is no
// fallback between strategies: if either fails, the query fails with
// that error.
func (e *Engine) Hybrid(ctx context.Context, req Request) (*HybridResult, error) {
	mdl, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	p := e.resolve(req.Params)

	var result HybridResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := e.userBased(gctx, mdl, req.UserID, p)
		if err != nil {
			return err
		}
		result.UserBased = recs
		return nil
	})
	g.Go(func() error {
		recs, err := e.itemBased(gctx, mdl, req.UserID, p)
		if err != nil {
			return err
		}
		result.ItemBased = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Int("user_id", req.UserID).
		Int("user_based", len(result.UserBased)).
		Int("item_based", len(result.ItemBased)).
		Msg("hybrid query served")

	return &result, nil
}

// UserBased returns the user-based top-N list for the target user.
func (e *Engine) UserBased(ctx context.Context, req Request) ([]Recommendation, error) {
	mdl, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return e.userBased(ctx, mdl, req.UserID, e.resolve(req.Params))
}

// ItemBased returns the item-based top-N list for the target user,
// seeded by the user's most recently top-rated movie. The seed itself
// is excluded from the returned list.
func (e *Engine) ItemBased(ctx context.Context, req Request) ([]Recommendation, error) {
	mdl, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return e.itemBased(ctx, mdl, req.UserID, e.resolve(req.Params))
}

// Neighbors returns the target user's neighbor candidates.
func (e *Engine) Neighbors(ctx context.Context, req Request) ([]NeighborCandidate, error) {
	mdl, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return FindNeighbors(ctx, mdl.matrix, req.UserID, e.resolve(req.Params))
}

// SimilarTo ranks movies similar to the given reference movie,
// excluding the reference itself, truncated to TopN.
func (e *Engine) SimilarTo(ctx context.Context, movieID int, params *Params) ([]Recommendation, error) {
	mdl, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	p := e.resolve(params)

	ranked, err := SimilarItems(ctx, mdl.matrix, movieID, p)
	if err != nil {
		return nil, err
	}

	// Rank 0 is the reference movie itself.
	ranked = ranked[1:]
	if len(ranked) > p.TopN {
		ranked = ranked[:p.TopN]
	}
	return mdl.withTitles(ranked), nil
}

func (e *Engine) userBased(ctx context.Context, mdl *model, userID int, p Params) ([]Recommendation, error) {
	neighbors, err := FindNeighbors(ctx, mdl.matrix, userID, p)
	if err != nil {
		return nil, err
	}
	scored := ScoreByNeighbors(mdl.matrix, neighbors, mdl.events, userID, p)
	return mdl.withTitles(scored), nil
}

func (e *Engine) itemBased(ctx context.Context, mdl *model, userID int, p Params) ([]Recommendation, error) {
	if !mdl.matrix.HasUser(userID) {
		return nil, &UnknownUserError{UserID: userID}
	}

	seed, err := MostRecentTopRated(mdl.events, userID, p.SeedRatingThreshold)
	if err != nil {
		return nil, err
	}

	ranked, err := SimilarItems(ctx, mdl.matrix, seed, p)
	if err != nil {
		return nil, err
	}

	ranked = ranked[1:]
	if len(ranked) > p.TopN {
		ranked = ranked[:p.TopN]
	}
	return mdl.withTitles(ranked), nil
}

// snapshot returns the current model or ErrNotReady.
func (e *Engine) snapshot() (*model, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return nil, ErrNotReady
	}
	return e.model, nil
}

// resolve applies a per-call parameter override, falling back to the
// engine defaults. Invalid overrides are dropped in favor of defaults.
func (e *Engine) resolve(override *Params) Params {
	if override == nil {
		return e.params
	}
	if err := override.Validate(); err != nil {
		e.logger.Warn().Err(err).Msg("invalid per-call params, using defaults")
		return e.params
	}
	return *override
}

// withTitles joins scored movies with their titles.
func (m *model) withTitles(scored []ScoredItem) []Recommendation {
	recs := make([]Recommendation, 0, len(scored))
	for _, s := range scored {
		recs = append(recs, Recommendation{
			MovieID: s.MovieID,
			Title:   m.titles[s.MovieID],
			Score:   s.Score,
		})
	}
	return recs
}
