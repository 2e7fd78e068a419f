// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"errors"
	"math"
	"testing"
	"time"
)

// ev builds a rating event with a timestamp offset in minutes from a
// fixed epoch, keeping test tables compact.
func ev(userID, movieID int, rating float64, minutes int) RatingEvent {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return RatingEvent{
		UserID:    userID,
		MovieID:   movieID,
		Rating:    rating,
		Timestamp: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestBuildMatrixPopularityFloor(t *testing.T) {
	// Movie 10 has 3 ratings, movie 20 has 2, movie 30 has 1.
	events := []RatingEvent{
		ev(1, 10, 5, 0), ev(2, 10, 4, 1), ev(3, 10, 3, 2),
		ev(1, 20, 2, 3), ev(2, 20, 5, 4),
		ev(3, 30, 1, 5),
	}

	tests := []struct {
		name      string
		floor     int
		wantItems []int
	}{
		{name: "floor zero keeps all", floor: 0, wantItems: []int{10, 20, 30}},
		{name: "floor one drops singletons", floor: 1, wantItems: []int{10, 20}},
		{name: "floor two keeps strictly greater", floor: 2, wantItems: []int{10}},
		{name: "floor three drops everything", floor: 3, wantItems: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildMatrix(events, tt.floor)
			if err != nil {
				t.Fatalf("BuildMatrix: %v", err)
			}

			got := m.ItemIDs()
			if len(got) != len(tt.wantItems) {
				t.Fatalf("items = %v, want %v", got, tt.wantItems)
			}
			for i, id := range tt.wantItems {
				if got[i] != id {
					t.Errorf("items = %v, want %v", got, tt.wantItems)
					break
				}
			}

			// No surviving item may have a rating count at or below the floor.
			for _, id := range got {
				if n := len(m.ItemRatings(id)); n <= tt.floor {
					t.Errorf("movie %d has %d ratings, floor %d", id, n, tt.floor)
				}
			}
		})
	}
}

func TestBuildMatrixDuplicateRating(t *testing.T) {
	events := []RatingEvent{
		ev(1, 10, 5, 0),
		ev(2, 10, 4, 1),
		ev(1, 10, 3, 2), // same user, same movie
	}

	_, err := BuildMatrix(events, 0)
	var dup *DuplicateRatingError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateRatingError", err)
	}
	if dup.UserID != 1 || dup.MovieID != 10 {
		t.Errorf("duplicate = user %d movie %d, want user 1 movie 10", dup.UserID, dup.MovieID)
	}
}

func TestBuildMatrixDuplicateUnderFloorIgnored(t *testing.T) {
	// The duplicate pair belongs to a movie dropped by the floor, so the
	// build must succeed: only surviving events are pivoted.
	events := []RatingEvent{
		ev(1, 10, 5, 0), ev(2, 10, 4, 1), ev(3, 10, 3, 2),
		ev(1, 30, 1, 3), ev(1, 30, 2, 4),
	}

	m, err := BuildMatrix(events, 2)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if m.HasItem(30) {
		t.Error("movie 30 should have been dropped by the floor")
	}
}

func TestMatrixTransposedViewsAgree(t *testing.T) {
	events := []RatingEvent{
		ev(1, 10, 5, 0), ev(1, 20, 3, 1),
		ev(2, 10, 4, 2), ev(2, 20, 2, 3),
	}

	m, err := BuildMatrix(events, 0)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	if got := m.Ratings(); got != 4 {
		t.Errorf("Ratings() = %d, want 4", got)
	}
	for _, uid := range m.UserIDs() {
		for movieID, rating := range m.UserRatings(uid) {
			if got := m.ItemRatings(movieID)[uid]; got != rating {
				t.Errorf("transposed view disagrees at (%d, %d): %g vs %g", uid, movieID, got, rating)
			}
		}
	}
}

func TestPearsonPairwiseComplete(t *testing.T) {
	tests := []struct {
		name     string
		a, b     map[int]float64
		want     float64
		wantOK   bool
	}{
		{
			name:   "perfect positive over shared keys",
			a:      map[int]float64{1: 5, 2: 4, 3: 1},
			b:      map[int]float64{1: 5, 2: 4, 9: 2},
			want:   1.0,
			wantOK: true,
		},
		{
			name:   "perfect negative",
			a:      map[int]float64{1: 5, 2: 4},
			b:      map[int]float64{1: 1, 2: 2},
			want:   -1.0,
			wantOK: true,
		},
		{
			name:   "single shared observation undefined",
			a:      map[int]float64{1: 5, 2: 4},
			b:      map[int]float64{2: 3, 7: 1},
			wantOK: false,
		},
		{
			name:   "no shared observations undefined",
			a:      map[int]float64{1: 5},
			b:      map[int]float64{2: 3},
			wantOK: false,
		},
		{
			name:   "zero variance undefined",
			a:      map[int]float64{1: 5, 2: 4},
			b:      map[int]float64{1: 3, 2: 3},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pearson(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("corr = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestPearsonSymmetric(t *testing.T) {
	a := map[int]float64{1: 5, 2: 3, 3: 4, 4: 1}
	b := map[int]float64{2: 2, 3: 5, 4: 4, 5: 1}

	ab, okAB := pearson(a, b)
	ba, okBA := pearson(b, a)
	if okAB != okBA {
		t.Fatalf("symmetry broken: ok %v vs %v", okAB, okBA)
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("corr(a,b) = %g, corr(b,a) = %g", ab, ba)
	}
}
