// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package recommend implements the hybrid movie recommendation engine.
//
// Two collaborative-filtering strategies run over the same sparse
// user-item rating matrix:
//
//   - User-based: find neighbor users whose rating history overlaps the
//     target's and correlates strongly with it, then average their
//     correlation-weighted ratings per movie.
//   - Item-based: pick the target's most recently top-rated movie as a
//     seed, then rank every other movie by the Pearson correlation of
//     its rating column with the seed's.
//
// The hybrid result exposes both ranked lists side by side without
// deduplication or cross-strategy re-ranking.
//
// All correlations are pairwise-complete: each pair is computed over the
// intersection of entries both vectors have observed, never by treating
// missing ratings as zero. Pairs sharing fewer than two observations
// have undefined correlation and are dropped.
//
// The package has no dependencies on other internal packages. Data
// arrives through the DataProvider interface, which the storage layer
// implements, so the engine stays decoupled from DuckDB.
package recommend
