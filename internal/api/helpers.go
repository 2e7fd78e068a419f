// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/recommend"
)

// respondJSON sends a JSON response with the standard envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeEnvelope(w, r, status, &APIResponse{
		Status: "success",
		Data:   data,
	})
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeEnvelope(w, r, status, &APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.Metadata = Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("write response")
	}
}

// respondEngineError maps engine errors onto HTTP statuses. Typed
// domain errors become 404s: the resource (user, seed rating, movie)
// needed to answer does not exist.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unknownUser *recommend.UnknownUserError
		unknownItem *recommend.UnknownItemError
		noSeed      *recommend.NoQualifyingRatingError
	)

	switch {
	case errors.As(err, &unknownUser):
		respondError(w, r, http.StatusNotFound, codeUnknownUser, err.Error())
	case errors.As(err, &unknownItem):
		respondError(w, r, http.StatusNotFound, codeUnknownMovie, err.Error())
	case errors.As(err, &noSeed):
		respondError(w, r, http.StatusNotFound, codeNoSeedRating, err.Error())
	case errors.Is(err, recommend.ErrNotReady):
		respondError(w, r, http.StatusServiceUnavailable, codeNotReady, "model is still building, retry shortly")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, codeTimeout, "query exceeded its deadline")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("recommendation query failed")
		respondError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// pathInt parses an integer URL parameter.
func pathInt(value string) (int, error) {
	return strconv.Atoi(value)
}

// queryParams builds a per-call parameter override from query string
// values, starting from the engine defaults. Returns nil when no
// override is present.
func queryParams(r *http.Request, base recommend.Params) (*recommend.Params, error) {
	q := r.URL.Query()
	p := base
	overridden := false

	ints := map[string]*int{
		"top_n":       &p.TopN,
		"num_workers": &p.NumWorkers,
	}
	for name, dst := range ints {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, errors.New("invalid " + name)
			}
			*dst = v
			overridden = true
		}
	}

	floats := map[string]*float64{
		"overlap_fraction":      &p.OverlapFraction,
		"min_correlation":       &p.MinCorrelation,
		"score_floor":           &p.ScoreFloor,
		"seed_rating_threshold": &p.SeedRatingThreshold,
	}
	for name, dst := range floats {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.New("invalid " + name)
			}
			*dst = v
			overridden = true
		}
	}

	if !overridden {
		return nil, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
