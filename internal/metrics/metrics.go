// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package metrics exposes Prometheus instrumentation for ReelRank:
// rating-matrix builds, recommendation query latency, correlation sweep
// volume, snapshot cache efficiency, and API endpoint throughput.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Matrix build metrics.
	MatrixBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelrank_matrix_build_duration_seconds",
			Help:    "Duration of rating matrix builds in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	MatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_matrix_users",
			Help: "Number of users in the current rating matrix",
		},
	)

	MatrixItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_matrix_items",
			Help: "Number of items surviving the popularity floor in the current rating matrix",
		},
	)

	MatrixRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_matrix_ratings",
			Help: "Number of observed ratings in the current rating matrix",
		},
	)

	MatrixBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelrank_matrix_build_errors_total",
			Help: "Total number of failed rating matrix builds",
		},
	)

	// Recommendation query metrics.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_query_duration_seconds",
			Help:    "Recommendation query duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"strategy"}, // "user_based", "item_based", "hybrid"
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_query_errors_total",
			Help: "Total number of failed recommendation queries",
		},
		[]string{"strategy", "error_type"},
	)

	CorrelationPairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_correlation_pairs_total",
			Help: "Total number of pairwise correlations computed",
		},
		[]string{"strategy"},
	)

	// Snapshot cache metrics.
	SnapshotHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelrank_snapshot_hits_total",
			Help: "Total number of matrix snapshot cache hits",
		},
	)

	SnapshotMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelrank_snapshot_misses_total",
			Help: "Total number of matrix snapshot cache misses",
		},
	)

	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_snapshot_bytes",
			Help: "Size of the last persisted matrix snapshot in bytes",
		},
	)

	// Database metrics.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API endpoint metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordMatrixBuild records the outcome of a rating matrix build.
func RecordMatrixBuild(duration time.Duration, users, items, ratings int, err error) {
	if err != nil {
		MatrixBuildErrors.Inc()
		return
	}
	MatrixBuildDuration.Observe(duration.Seconds())
	MatrixUsers.Set(float64(users))
	MatrixItems.Set(float64(items))
	MatrixRatings.Set(float64(ratings))
}

// RecordQuery records a completed recommendation query.
func RecordQuery(strategy string, duration time.Duration, err error) {
	if err != nil {
		QueryErrors.WithLabelValues(strategy, errorType(err)).Inc()
		return
	}
	QueryDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordDBQuery records a database query with its duration and outcome.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// errorType buckets errors into coarse label values to keep cardinality low.
func errorType(err error) string {
	if err == nil {
		return "none"
	}
	return "query_failed"
}
