// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"sort"
	"sync"

	"github.com/reelrank/reelrank/internal/metrics"
)

// SimilarItems ranks every movie in the matrix by the Pearson
// correlation of its rating column with the reference movie's column,
// pairwise-complete over users who rated both. Pairs sharing fewer than
// two raters have undefined correlation and are dropped.
//
// The reference movie itself occupies rank 0 with correlation exactly
// 1.0; callers that want "similar, excluding self" drop index 0 of the
// returned list. Remaining entries are sorted by correlation descending
// with ties broken by ascending movieID.
//
// Returns UnknownItemError if the reference movie is not in the matrix.
// The column sweep is parallel across p.NumWorkers goroutines and
// aborts when ctx is cancelled.
func SimilarItems(ctx context.Context, m *Matrix, referenceMovie int, p Params) ([]ScoredItem, error) {
	ref := m.ItemRatings(referenceMovie)
	if len(ref) == 0 {
		return nil, &UnknownItemError{MovieID: referenceMovie}
	}

	itemIDs := m.ItemIDs()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		ranked []ScoredItem
		pairs  int
	)

	chunkSize := (len(itemIDs) + p.NumWorkers - 1) / p.NumWorkers
	for w := 0; w < p.NumWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(movies []int) {
			defer wg.Done()

			local := make([]ScoredItem, 0, len(movies))
			localPairs := 0
			for _, movieID := range movies {
				if ContextCancelled(ctx) {
					return
				}
				if movieID == referenceMovie {
					continue
				}

				localPairs++
				corr, ok := pearson(ref, m.ItemRatings(movieID))
				if !ok {
					continue
				}
				local = append(local, ScoredItem{MovieID: movieID, Score: corr})
			}

			mu.Lock()
			ranked = append(ranked, local...)
			pairs += localPairs
			mu.Unlock()
		}(itemIDs[start:end])
	}

	wg.Wait()
	metrics.CorrelationPairs.WithLabelValues("item_based").Add(float64(pairs))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].MovieID < ranked[j].MovieID
	})

	// A column's correlation with itself is 1.0 by definition; pinning
	// it avoids the degenerate zero-variance case and guarantees rank 0.
	result := make([]ScoredItem, 0, len(ranked)+1)
	result = append(result, ScoredItem{MovieID: referenceMovie, Score: 1.0})
	result = append(result, ranked...)

	return result, nil
}

// MostRecentTopRated selects, among the user's events whose rating
// equals threshold exactly, the one with the latest timestamp and
// returns its movieID. Timestamp ties are broken by ingestion order:
// the first matching event wins. Returns NoQualifyingRatingError when
// the user has no event at the threshold.
func MostRecentTopRated(events []RatingEvent, userID int, threshold float64) (int, error) {
	best := -1
	for i := range events {
		ev := &events[i]
		if ev.UserID != userID || ev.Rating != threshold {
			continue
		}
		if best == -1 || ev.Timestamp.After(events[best].Timestamp) {
			best = i
		}
	}

	if best == -1 {
		return 0, &NoQualifyingRatingError{UserID: userID, Threshold: threshold}
	}
	return events[best].MovieID, nil
}
