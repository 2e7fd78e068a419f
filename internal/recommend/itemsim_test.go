// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"errors"
	"testing"
)

func TestSimilarItemsSelfAtRankZero(t *testing.T) {
	events := []RatingEvent{
		ev(1, 10, 5, 0), ev(1, 20, 4, 1),
		ev(2, 10, 5, 2), ev(2, 20, 5, 3),
		ev(3, 10, 1, 4), ev(3, 20, 1, 5),
	}
	m, err := BuildMatrix(events, 0)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	ranked, err := SimilarItems(context.Background(), m, 10, testParams())
	if err != nil {
		t.Fatalf("SimilarItems: %v", err)
	}

	if len(ranked) == 0 || ranked[0].MovieID != 10 {
		t.Fatalf("ranked = %+v, want movie 10 at rank 0", ranked)
	}
	if ranked[0].Score != 1.0 {
		t.Errorf("self correlation = %g, want exactly 1.0", ranked[0].Score)
	}
}

func TestSimilarItemsScenario(t *testing.T) {
	// Movie 10's column is {1:5, 2:5, 3:1}; movie 20's is {1:4, 2:5, 3:1},
	// a strong positive relation. Movie 30 shares only one rater with
	// movie 10, so its correlation is undefined and it is dropped.
	events := []RatingEvent{
		ev(1, 10, 5, 0), ev(2, 10, 5, 1), ev(3, 10, 1, 2),
		ev(1, 20, 4, 3), ev(2, 20, 5, 4), ev(3, 20, 1, 5),
		ev(2, 30, 3, 6),
	}
	m, err := BuildMatrix(events, 0)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	ranked, err := SimilarItems(context.Background(), m, 10, testParams())
	if err != nil {
		t.Fatalf("SimilarItems: %v", err)
	}

	if len(ranked) != 2 {
		t.Fatalf("ranked = %+v, want [10 20] only", ranked)
	}
	if ranked[1].MovieID != 20 {
		t.Errorf("rank 1 = movie %d, want 20", ranked[1].MovieID)
	}
	if ranked[1].Score < 0.9 {
		t.Errorf("corr(10, 20) = %g, want strongly positive", ranked[1].Score)
	}
	for _, s := range ranked {
		if s.MovieID == 30 {
			t.Error("movie 30 ranked despite undefined correlation")
		}
	}
}

func TestSimilarItemsDeterministic(t *testing.T) {
	events := []RatingEvent{
		ev(1, 10, 5, 0), ev(1, 20, 4, 1), ev(1, 30, 3, 2), ev(1, 40, 2, 3),
		ev(2, 10, 4, 4), ev(2, 20, 4, 5), ev(2, 30, 2, 6), ev(2, 40, 1, 7),
		ev(3, 10, 5, 8), ev(3, 20, 3, 9), ev(3, 30, 4, 10), ev(3, 40, 2, 11),
	}
	m, err := BuildMatrix(events, 0)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	first, err := SimilarItems(context.Background(), m, 10, testParams())
	if err != nil {
		t.Fatalf("SimilarItems: %v", err)
	}
	for run := 0; run < 10; run++ {
		got, err := SimilarItems(context.Background(), m, 10, testParams())
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if len(got) != len(first) {
			t.Fatalf("run %d: length %d vs %d", run, len(got), len(first))
		}
		for i := range got {
			if got[i] != first[i] {
				t.Fatalf("run %d: nondeterministic output %+v vs %+v", run, got, first)
			}
		}
	}
}

func TestSimilarItemsUnknownReference(t *testing.T) {
	events := []RatingEvent{ev(1, 10, 5, 0), ev(2, 10, 4, 1)}
	m, err := BuildMatrix(events, 0)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	_, err = SimilarItems(context.Background(), m, 999, testParams())
	var unknown *UnknownItemError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownItemError", err)
	}
	if unknown.MovieID != 999 {
		t.Errorf("MovieID = %d, want 999", unknown.MovieID)
	}
}

func TestMostRecentTopRated(t *testing.T) {
	tests := []struct {
		name      string
		events    []RatingEvent
		userID    int
		threshold float64
		want      int
		wantErr   bool
	}{
		{
			name: "latest qualifying event wins",
			events: []RatingEvent{
				ev(1, 10, 5, 0), ev(1, 20, 5, 10), ev(1, 30, 4, 20),
			},
			userID:    1,
			threshold: 5.0,
			want:      20,
		},
		{
			name: "timestamp tie keeps first in ingestion order",
			events: []RatingEvent{
				ev(1, 10, 5, 5), ev(1, 20, 5, 5),
			},
			userID:    1,
			threshold: 5.0,
			want:      10,
		},
		{
			name: "rating must equal threshold exactly",
			events: []RatingEvent{
				ev(1, 10, 4.5, 0), ev(1, 20, 5, 1),
			},
			userID:    1,
			threshold: 4.5,
			want:      10,
		},
		{
			name:      "no qualifying rating",
			events:    []RatingEvent{ev(1, 10, 4, 0)},
			userID:    1,
			threshold: 5.0,
			wantErr:   true,
		},
		{
			name:      "other users ignored",
			events:    []RatingEvent{ev(2, 10, 5, 0)},
			userID:    1,
			threshold: 5.0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MostRecentTopRated(tt.events, tt.userID, tt.threshold)
			if tt.wantErr {
				var noQual *NoQualifyingRatingError
				if !errors.As(err, &noQual) {
					t.Fatalf("err = %v, want NoQualifyingRatingError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MostRecentTopRated: %v", err)
			}
			if got != tt.want {
				t.Errorf("movie = %d, want %d", got, tt.want)
			}
		})
	}
}
