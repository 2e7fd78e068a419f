// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// Handler serves the recommendation API. Every query handler clamps the
// request to the configured per-query deadline.
type Handler struct {
	engine       *recommend.Engine
	store        Storage
	queryTimeout time.Duration
}

// Storage is the subset of the database the API needs for health and
// stats responses.
type Storage interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (movies, ratings int64, err error)
}

// NewHandler creates the API handler.
func NewHandler(engine *recommend.Engine, store Storage, queryTimeout time.Duration) *Handler {
	return &Handler{
		engine:       engine,
		store:        store,
		queryTimeout: queryTimeout,
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady reports readiness: the database answers and a model has
// been trained at least once.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, codeInternal, "database unavailable")
		return
	}
	if !h.engine.Ready() {
		respondError(w, r, http.StatusServiceUnavailable, codeNotReady, "model is still building")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// Health returns a full health report with dataset counts and model
// metadata.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	report := map[string]interface{}{
		"status": "ok",
	}

	movies, ratings, err := h.store.Counts(ctx)
	if err != nil {
		report["status"] = "degraded"
		report["database"] = "unavailable"
	} else {
		report["database"] = map[string]int64{
			"movies":  movies,
			"ratings": ratings,
		}
	}

	if info, err := h.engine.Info(); err == nil {
		report["model"] = info
	} else {
		report["status"] = "degraded"
		report["model"] = "not trained"
	}

	status := http.StatusOK
	if report["status"] == "degraded" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, r, status, report)
}

// ModelInfo returns metadata about the active model snapshot.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.engine.Info()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, info)
}

// Hybrid runs both strategies for a user and returns the two lists side
// by side.
func (h *Handler) Hybrid(w http.ResponseWriter, r *http.Request) {
	req, ok := h.userRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.engine.Hybrid(ctx, req)
	metrics.RecordQuery("hybrid", time.Since(start), err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

// UserBased returns recommendations from the user neighborhood strategy
// only.
func (h *Handler) UserBased(w http.ResponseWriter, r *http.Request) {
	req, ok := h.userRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	recs, err := h.engine.UserBased(ctx, req)
	metrics.RecordQuery("user_based", time.Since(start), err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":         req.UserID,
		"recommendations": recs,
	})
}

// ItemBased returns recommendations from the seed-movie similarity
// strategy only.
func (h *Handler) ItemBased(w http.ResponseWriter, r *http.Request) {
	req, ok := h.userRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	recs, err := h.engine.ItemBased(ctx, req)
	metrics.RecordQuery("item_based", time.Since(start), err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":         req.UserID,
		"recommendations": recs,
	})
}

// Neighbors exposes the correlated-user neighborhood for a user, mostly
// useful for debugging recommendation quality.
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	req, ok := h.userRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	neighbors, err := h.engine.Neighbors(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":   req.UserID,
		"neighbors": neighbors,
	})
}

// Similar returns the movies whose rating columns correlate most with
// the given movie.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	movieID, err := pathInt(chi.URLParam(r, "movieID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "movieID must be an integer")
		return
	}
	params, err := queryParams(r, h.engine.Params())
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	recs, err := h.engine.SimilarTo(ctx, movieID, params)
	metrics.RecordQuery("item_based", time.Since(start), err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"movie_id": movieID,
		"similar":  recs,
	})
}

// userRequest parses the user ID path parameter and any parameter
// overrides from the query string. Writes the error response itself
// and returns ok=false on bad input.
func (h *Handler) userRequest(w http.ResponseWriter, r *http.Request) (recommend.Request, bool) {
	userID, err := pathInt(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "userID must be an integer")
		return recommend.Request{}, false
	}
	params, err := queryParams(r, h.engine.Params())
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return recommend.Request{}, false
	}
	return recommend.Request{UserID: userID, Params: params}, true
}
