// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import "time"

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the API.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeUnknownUser  = "UNKNOWN_USER"
	codeUnknownMovie = "UNKNOWN_MOVIE"
	codeNoSeedRating = "NO_QUALIFYING_RATING"
	codeNotReady     = "MODEL_NOT_READY"
	codeTimeout      = "QUERY_TIMEOUT"
	codeInternal     = "INTERNAL_ERROR"
)
