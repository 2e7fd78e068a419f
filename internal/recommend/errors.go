// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by engine queries before the first successful
// matrix build.
var ErrNotReady = errors.New("recommend: model not built")

// DuplicateRatingError reports a (user, movie) pair rated more than once
// among the events that survive the popularity floor. It is fatal to the
// matrix build and is never retried.
type DuplicateRatingError struct {
	UserID  int
	MovieID int
}

func (e *DuplicateRatingError) Error() string {
	return fmt.Sprintf("recommend: duplicate rating for user %d movie %d", e.UserID, e.MovieID)
}

// UnknownUserError reports a target user with no ratings in the matrix.
// No recommendation is possible for such a user.
type UnknownUserError struct {
	UserID int
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("recommend: user %d has no ratings in the matrix", e.UserID)
}

// UnknownItemError reports a reference movie absent from the matrix,
// either unknown entirely or dropped by the popularity floor.
type UnknownItemError struct {
	MovieID int
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("recommend: movie %d is not in the matrix", e.MovieID)
}

// NoQualifyingRatingError reports that a user has no rating event at the
// threshold required to seed the item-based strategy.
type NoQualifyingRatingError struct {
	UserID    int
	Threshold float64
}

func (e *NoQualifyingRatingError) Error() string {
	return fmt.Sprintf("recommend: user %d has no rating at %.1f", e.UserID, e.Threshold)
}
