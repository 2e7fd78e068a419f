// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// fakeProvider serves fixed data through the DataProvider interface.
type fakeProvider struct {
	events []RatingEvent
	items  []Item
	err    error
}

func (f *fakeProvider) GetRatingEvents(_ context.Context) ([]RatingEvent, error) {
	return f.events, f.err
}

func (f *fakeProvider) GetItems(_ context.Context) ([]Item, error) {
	return f.items, f.err
}

// fixtureEvents builds a small community where user 1 has a clear
// neighbor (user 2) and a 5.0-rated seed movie.
func fixtureEvents() []RatingEvent {
	return []RatingEvent{
		// User 1: rates 10 and 20, top-rates 10.
		ev(1, 10, 5, 0), ev(1, 20, 4, 1),
		// User 2: same taste, plus movies 30 and 40.
		ev(2, 10, 5, 2), ev(2, 20, 4, 3), ev(2, 30, 5, 4), ev(2, 40, 4, 5),
		// User 3: inverse taste.
		ev(3, 10, 1, 6), ev(3, 20, 2, 7), ev(3, 30, 1, 8),
		// User 4: fills columns so item-item correlations are defined.
		ev(4, 10, 4, 9), ev(4, 20, 3, 10), ev(4, 30, 4, 11), ev(4, 40, 3, 12),
	}
}

func fixtureItems() []Item {
	return []Item{
		{MovieID: 10, Title: "Heat (1995)"},
		{MovieID: 20, Title: "Casino (1995)"},
		{MovieID: 30, Title: "Goodfellas (1990)"},
		{MovieID: 40, Title: "Ronin (1998)"},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testParams(), zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngineNotReady(t *testing.T) {
	e := newTestEngine(t)

	if e.Ready() {
		t.Error("engine ready before first train")
	}
	if _, err := e.Hybrid(context.Background(), Request{UserID: 1}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Hybrid err = %v, want ErrNotReady", err)
	}
	if _, err := e.Info(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Info err = %v, want ErrNotReady", err)
	}
}

func TestEngineInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.TopN = 0
	if _, err := NewEngine(p, zerolog.New(io.Discard)); err == nil {
		t.Error("NewEngine accepted TopN = 0")
	}
}

func TestEngineRebuildFromProvider(t *testing.T) {
	e := newTestEngine(t)
	e.SetDataProvider(&fakeProvider{events: fixtureEvents(), items: fixtureItems()})

	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if !e.Ready() {
		t.Fatal("engine not ready after rebuild")
	}

	info, err := e.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Users != 4 || info.Movies != 4 || info.Version != 1 {
		t.Errorf("info = %+v, want 4 users, 4 movies, version 1", info)
	}

	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	info, _ = e.Info()
	if info.Version != 2 {
		t.Errorf("version = %d, want 2 after second rebuild", info.Version)
	}
}

func TestEngineHybrid(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Train(context.Background(), fixtureEvents(), fixtureItems()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	p := testParams()
	p.ScoreFloor = 0
	result, err := e.Hybrid(context.Background(), Request{UserID: 1, Params: &p})
	if err != nil {
		t.Fatalf("Hybrid: %v", err)
	}

	if total := len(result.UserBased) + len(result.ItemBased); total > 2*p.TopN {
		t.Errorf("hybrid returned %d items, cap is %d", total, 2*p.TopN)
	}

	// Every recommended movie must exist in the matrix fixture.
	known := map[int]bool{10: true, 20: true, 30: true, 40: true}
	for _, r := range append(result.UserBased, result.ItemBased...) {
		if !known[r.MovieID] {
			t.Errorf("fabricated movie %d in hybrid result", r.MovieID)
		}
		if r.Title == "" {
			t.Errorf("movie %d missing title", r.MovieID)
		}
	}

	// The seed (movie 10, user 1's latest 5.0 rating) must not appear in
	// the item-based list.
	for _, r := range result.ItemBased {
		if r.MovieID == 10 {
			t.Error("item-based list contains the seed movie itself")
		}
	}

	if len(result.UserBased) == 0 {
		t.Error("user-based list empty, expected neighbor-driven recommendations")
	}
	if len(result.ItemBased) == 0 {
		t.Error("item-based list empty, expected similar movies to the seed")
	}
}

func TestEngineHybridUnknownUser(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Train(context.Background(), fixtureEvents(), fixtureItems()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	_, err := e.Hybrid(context.Background(), Request{UserID: 777})
	var unknown *UnknownUserError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownUserError", err)
	}
}

func TestEngineHybridNoQualifyingSeed(t *testing.T) {
	// User 3 never rated anything at 5.0, so the item-based strategy
	// cannot seed and the hybrid query fails with the typed error.
	e := newTestEngine(t)
	if err := e.Train(context.Background(), fixtureEvents(), fixtureItems()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	_, err := e.Hybrid(context.Background(), Request{UserID: 3})
	var noQual *NoQualifyingRatingError
	if !errors.As(err, &noQual) {
		t.Fatalf("err = %v, want NoQualifyingRatingError", err)
	}
}

func TestEngineUserBasedEmptyIsNotError(t *testing.T) {
	// With an impossible overlap requirement there are no neighbors, so
	// the user-based list is empty but the call succeeds.
	e := newTestEngine(t)
	if err := e.Train(context.Background(), fixtureEvents(), fixtureItems()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	p := testParams()
	p.OverlapFraction = 1.0
	recs, err := e.UserBased(context.Background(), Request{UserID: 1, Params: &p})
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("recs = %+v, want empty", recs)
	}
}

func TestEnginePerCallOverride(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Train(context.Background(), fixtureEvents(), fixtureItems()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	p := testParams()
	p.ScoreFloor = 0
	p.TopN = 1
	recs, err := e.UserBased(context.Background(), Request{UserID: 1, Params: &p})
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	if len(recs) > 1 {
		t.Errorf("per-call TopN=1 ignored, got %d items", len(recs))
	}
}

func TestEngineSimilarToExcludesSelf(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Train(context.Background(), fixtureEvents(), fixtureItems()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	recs, err := e.SimilarTo(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("SimilarTo: %v", err)
	}
	for _, r := range recs {
		if r.MovieID == 10 {
			t.Error("similar list contains the reference movie")
		}
	}

	_, err = e.SimilarTo(context.Background(), 999, nil)
	var unknown *UnknownItemError
	if !errors.As(err, &unknown) {
		t.Errorf("err = %v, want UnknownItemError", err)
	}
}

func TestEngineTrainDuplicateFails(t *testing.T) {
	e := newTestEngine(t)
	events := []RatingEvent{ev(1, 10, 5, 0), ev(1, 10, 4, 1)}

	err := e.Train(context.Background(), events, nil)
	var dup *DuplicateRatingError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateRatingError", err)
	}
	if e.Ready() {
		t.Error("engine became ready despite failed train")
	}
}
