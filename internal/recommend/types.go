// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"time"
)

// RatingEvent is one user's numeric judgment of one movie at a point in
// time. Events are immutable once ingested. Slice order is ingestion
// order and is used as the deterministic tie-break for timestamp ties.
type RatingEvent struct {
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// Item is immutable movie metadata keyed by MovieID. Titles are assumed
// unique within the active item set; the ingestion layer guarantees it.
type Item struct {
	MovieID int      `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres,omitempty"`
}

// NeighborCandidate is a user judged similar to the target user.
// Derived per query, never persisted.
type NeighborCandidate struct {
	UserID       int     `json:"user_id"`
	OverlapCount int     `json:"overlap_count"`
	Correlation  float64 `json:"correlation"`
}

// ScoredItem is the output unit of both scoring strategies. Score
// semantics differ between them (weighted-average rating for the
// user-based scorer, similarity coefficient for the item-based one) and
// must not be compared across strategies.
type ScoredItem struct {
	MovieID int     `json:"movie_id"`
	Score   float64 `json:"score"`
}

// Recommendation is a ScoredItem joined with its title for callers.
type Recommendation struct {
	MovieID int     `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// HybridResult is the paired output of the two strategies, presented as
// two independent ranked lists of length up to TopN each. No
// deduplication across the lists is performed.
type HybridResult struct {
	UserBased []Recommendation `json:"user_based"`
	ItemBased []Recommendation `json:"item_based"`
}

// DataProvider supplies training data to the engine. Implemented by the
// storage layer; the interface keeps this package free of database
// imports.
type DataProvider interface {
	// GetRatingEvents returns all rating events in ingestion order.
	GetRatingEvents(ctx context.Context) ([]RatingEvent, error)

	// GetItems returns all movie metadata records.
	GetItems(ctx context.Context) ([]Item, error)
}
