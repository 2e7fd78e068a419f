// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"sort"
)

// Matrix is the sparse user-item rating matrix. Missing cells mean "no
// rating", never zero. It is built once per run and is immutable
// afterwards, so concurrent read access needs no locking.
type Matrix struct {
	// users maps userID -> movieID -> rating.
	users map[int]map[int]float64

	// items is the transposed view: movieID -> userID -> rating.
	items map[int]map[int]float64

	// userIDs and itemIDs are sorted for deterministic iteration.
	userIDs []int
	itemIDs []int

	ratings int
}

// BuildMatrix pivots rating events into the sparse matrix. Movies whose
// total rating count does not strictly exceed popularityFloor are
// dropped before anything else, so popularity filtering cannot be
// bypassed by a later query. A duplicate (user, movie) pair among the
// surviving events fails the build with DuplicateRatingError.
func BuildMatrix(events []RatingEvent, popularityFloor int) (*Matrix, error) {
	counts := make(map[int]int)
	for i := range events {
		counts[events[i].MovieID]++
	}

	m := &Matrix{
		users: make(map[int]map[int]float64),
		items: make(map[int]map[int]float64),
	}

	for i := range events {
		ev := &events[i]
		if counts[ev.MovieID] <= popularityFloor {
			continue
		}

		row := m.users[ev.UserID]
		if row == nil {
			row = make(map[int]float64)
			m.users[ev.UserID] = row
		}
		if _, exists := row[ev.MovieID]; exists {
			return nil, &DuplicateRatingError{UserID: ev.UserID, MovieID: ev.MovieID}
		}
		row[ev.MovieID] = ev.Rating

		col := m.items[ev.MovieID]
		if col == nil {
			col = make(map[int]float64)
			m.items[ev.MovieID] = col
		}
		col[ev.UserID] = ev.Rating

		m.ratings++
	}

	m.userIDs = sortedKeys(m.users)
	m.itemIDs = sortedKeys(m.items)

	return m, nil
}

// Users returns the number of users with at least one surviving rating.
func (m *Matrix) Users() int { return len(m.users) }

// Items returns the number of movies surviving the popularity floor.
func (m *Matrix) Items() int { return len(m.items) }

// Ratings returns the number of observed cells in the matrix.
func (m *Matrix) Ratings() int { return m.ratings }

// HasUser reports whether the user has any ratings in the matrix.
func (m *Matrix) HasUser(userID int) bool {
	return len(m.users[userID]) > 0
}

// HasItem reports whether the movie survived into the matrix.
func (m *Matrix) HasItem(movieID int) bool {
	return len(m.items[movieID]) > 0
}

// UserRatings returns the user's row (movieID -> rating). The returned
// map is shared and must be treated as read-only.
func (m *Matrix) UserRatings(userID int) map[int]float64 {
	return m.users[userID]
}

// ItemRatings returns the movie's column (userID -> rating). The
// returned map is shared and must be treated as read-only.
func (m *Matrix) ItemRatings(movieID int) map[int]float64 {
	return m.items[movieID]
}

// UserIDs returns all user IDs in ascending order. Read-only.
func (m *Matrix) UserIDs() []int { return m.userIDs }

// ItemIDs returns all surviving movie IDs in ascending order. Read-only.
func (m *Matrix) ItemIDs() []int { return m.itemIDs }

// pearson computes the Pearson correlation between two sparse vectors
// over their pairwise-complete observations, the keys both vectors have
// values for. It returns ok=false when the correlation is undefined:
// fewer than two shared observations, or zero variance on either side.
func pearson(a, b map[int]float64) (float64, bool) {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	var n int
	var sumA, sumB float64
	common := make([]int, 0, len(small))
	for k := range small {
		if _, ok := large[k]; ok {
			common = append(common, k)
			sumA += a[k]
			sumB += b[k]
			n++
		}
	}

	if n < 2 {
		return 0, false
	}

	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var num, denA, denB float64
	for _, k := range common {
		da := a[k] - meanA
		db := b[k] - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}

	if denA == 0 || denB == 0 {
		return 0, false
	}

	return num / (math.Sqrt(denA) * math.Sqrt(denB)), true
}

// sortedKeys returns the keys of a nested rating map in ascending order.
func sortedKeys(m map[int]map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
