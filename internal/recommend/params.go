// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import "fmt"

// Params holds the tunables of the recommendation pipeline. Every value
// has a stated default and is overridable per call by passing a Params
// in the query Request.
type Params struct {
	// PopularityFloor is the minimum total rating count a movie must
	// exceed (strictly) to remain in the matrix.
	// Default: 1000
	PopularityFloor int `json:"popularity_floor"`

	// OverlapFraction is the fraction of the target user's watched
	// movies another user must exceed (strictly) to become a neighbor
	// candidate.
	// Default: 0.60
	OverlapFraction float64 `json:"overlap_fraction"`

	// MinCorrelation is the minimum Pearson correlation (inclusive) a
	// candidate must reach to qualify as a neighbor.
	// Default: 0.65
	MinCorrelation float64 `json:"min_correlation"`

	// ScoreFloor is the minimum mean weighted score (strict) a movie
	// must exceed to be recommended by the user-based strategy.
	// Default: 3.5
	ScoreFloor float64 `json:"score_floor"`

	// TopN is the maximum list length per strategy.
	// Default: 5
	TopN int `json:"top_n"`

	// SeedRatingThreshold is the exact rating a movie must have received
	// from the target user to seed the item-based strategy.
	// Default: 5.0
	SeedRatingThreshold float64 `json:"seed_rating_threshold"`

	// NumWorkers is the number of parallel workers for the pairwise
	// correlation sweeps.
	// Default: 4
	NumWorkers int `json:"num_workers"`
}

// DefaultParams returns the default pipeline parameters.
func DefaultParams() Params {
	return Params{
		PopularityFloor:     1000,
		OverlapFraction:     0.60,
		MinCorrelation:      0.65,
		ScoreFloor:          3.5,
		TopN:                5,
		SeedRatingThreshold: 5.0,
		NumWorkers:          4,
	}
}

// Validate checks the parameters for internal consistency.
func (p Params) Validate() error {
	if p.PopularityFloor < 0 {
		return fmt.Errorf("popularity floor must be >= 0, got %d", p.PopularityFloor)
	}
	if p.OverlapFraction < 0 || p.OverlapFraction > 1 {
		return fmt.Errorf("overlap fraction must be in [0, 1], got %g", p.OverlapFraction)
	}
	if p.MinCorrelation < -1 || p.MinCorrelation > 1 {
		return fmt.Errorf("min correlation must be in [-1, 1], got %g", p.MinCorrelation)
	}
	if p.TopN <= 0 {
		return fmt.Errorf("top N must be > 0, got %d", p.TopN)
	}
	if p.SeedRatingThreshold < 0 {
		return fmt.Errorf("seed rating threshold must be >= 0, got %g", p.SeedRatingThreshold)
	}
	if p.NumWorkers <= 0 {
		return fmt.Errorf("num workers must be > 0, got %d", p.NumWorkers)
	}
	return nil
}

// Request identifies a recommendation query. A nil Params uses the
// engine's configured parameters; a non-nil Params overrides them for
// this call only.
type Request struct {
	UserID int     `json:"user_id"`
	Params *Params `json:"params,omitempty"`
}
