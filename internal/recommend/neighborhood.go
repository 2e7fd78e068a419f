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

// FindNeighbors identifies users whose rating history overlaps the
// target's and correlates strongly with it.
//
// A candidate must strictly exceed overlapFraction of the target's
// watched count in shared movies, and its pairwise-complete Pearson
// correlation with the target must reach minCorrelation (inclusive).
// The target is never its own neighbor. An empty result is a valid
// outcome, not an error.
//
// Candidate evaluation is spread across p.NumWorkers goroutines; each
// user pair is independent and the collected result is sorted
// deterministically (correlation descending, userID ascending)
// regardless of completion order. Cancelling ctx aborts the sweep.
func FindNeighbors(ctx context.Context, m *Matrix, targetUser int, p Params) ([]NeighborCandidate, error) {
	watched := m.UserRatings(targetUser)
	if len(watched) == 0 {
		return nil, &UnknownUserError{UserID: targetUser}
	}

	userIDs := m.UserIDs()
	overlapFloor := float64(len(watched)) * p.OverlapFraction

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		candidates []NeighborCandidate
		pairs      int
	)

	chunkSize := (len(userIDs) + p.NumWorkers - 1) / p.NumWorkers
	for w := 0; w < p.NumWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(users []int) {
			defer wg.Done()

			local := make([]NeighborCandidate, 0, 16)
			localPairs := 0
			for _, uid := range users {
				if ContextCancelled(ctx) {
					return
				}
				if uid == targetUser {
					continue
				}

				other := m.UserRatings(uid)
				overlap := countOverlap(watched, other)
				if float64(overlap) <= overlapFloor {
					continue
				}

				localPairs++
				corr, ok := pearson(watched, other)
				if !ok || corr < p.MinCorrelation {
					continue
				}

				local = append(local, NeighborCandidate{
					UserID:       uid,
					OverlapCount: overlap,
					Correlation:  corr,
				})
			}

			mu.Lock()
			candidates = append(candidates, local...)
			pairs += localPairs
			mu.Unlock()
		}(userIDs[start:end])
	}

	wg.Wait()
	metrics.CorrelationPairs.WithLabelValues("user_based").Add(float64(pairs))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Correlation != candidates[j].Correlation {
			return candidates[i].Correlation > candidates[j].Correlation
		}
		return candidates[i].UserID < candidates[j].UserID
	})

	return candidates, nil
}

// countOverlap counts the keys of watched that other also has.
func countOverlap(watched, other map[int]float64) int {
	if len(other) < len(watched) {
		watched, other = other, watched
	}
	n := 0
	for k := range watched {
		if _, ok := other[k]; ok {
			n++
		}
	}
	return n
}

// ContextCancelled reports whether the context has been cancelled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
