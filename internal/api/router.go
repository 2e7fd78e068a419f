// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/recommend"
)

// New builds the HTTP router: health and metrics endpoints at the root,
// the recommendation API under /api/v1 behind CORS and rate limiting.
func New(engine *recommend.Engine, store Storage, cfg *config.Config) http.Handler {
	h := NewHandler(engine, store, cfg.Server.QueryTimeout)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(prometheusMetrics)

	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if len(cfg.API.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: cfg.API.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				MaxAge:         300,
			}))
		}
		if cfg.API.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.API.RateLimit, cfg.API.RateLimitWindow))
		}

		r.Get("/model", h.ModelInfo)
		r.Get("/recommendations/hybrid/{userID}", h.Hybrid)
		r.Get("/recommendations/user-based/{userID}", h.UserBased)
		r.Get("/recommendations/item-based/{userID}", h.ItemBased)
		r.Get("/users/{userID}/neighbors", h.Neighbors)
		r.Get("/movies/{movieID}/similar", h.Similar)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, codeValidation, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, codeValidation, "method not allowed")
	})

	return r
}
