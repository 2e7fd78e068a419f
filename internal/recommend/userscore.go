// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import "sort"

// ScoreByNeighbors aggregates neighbor ratings into a weighted
// recommendation score per movie.
//
// For every rating event by a neighbor (events by excludeUser are
// skipped), the weighted value is the neighbor's correlation times the
// rating. Scores are the arithmetic mean of weighted values per movie
// across all contributing neighbor ratings. Movies not present in the
// matrix never appear in the output, so the popularity floor holds for
// this strategy too. Movies must strictly exceed p.ScoreFloor to be
// retained; the result is sorted by score descending with ties broken
// by ascending movieID, truncated to p.TopN.
//
// An empty neighbor set, or no movie clearing the floor, yields an
// empty result. That is a normal outcome, not a failure.
func ScoreByNeighbors(m *Matrix, neighbors []NeighborCandidate, events []RatingEvent, excludeUser int, p Params) []ScoredItem {
	if len(neighbors) == 0 {
		return nil
	}

	corrByUser := make(map[int]float64, len(neighbors))
	for _, n := range neighbors {
		corrByUser[n.UserID] = n.Correlation
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range events {
		ev := &events[i]
		if ev.UserID == excludeUser {
			continue
		}
		corr, ok := corrByUser[ev.UserID]
		if !ok {
			continue
		}
		if !m.HasItem(ev.MovieID) {
			continue
		}
		sums[ev.MovieID] += corr * ev.Rating
		counts[ev.MovieID]++
	}

	scored := make([]ScoredItem, 0, len(sums))
	for movieID, sum := range sums {
		mean := sum / float64(counts[movieID])
		if mean > p.ScoreFloor {
			scored = append(scored, ScoredItem{MovieID: movieID, Score: mean})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].MovieID < scored[j].MovieID
	})

	if len(scored) > p.TopN {
		scored = scored[:p.TopN]
	}

	return scored
}
