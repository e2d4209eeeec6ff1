// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/communehq/commune/internal/middleware"
)

// NewRouter builds the full route tree.
//
// The automation run endpoint sits outside the session-guarded group: its
// authorization (runner secret or session) and the feature-flag gate are
// handled inside the handler, because a disabled engine must answer 200 to
// anonymous callers.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RunnerSecretHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rateLimit := httprate.LimitByIP(h.cfg.Security.RateLimitReqs, h.cfg.Security.RateLimitWindow)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middleware.Prometheus)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// Trigger endpoint: authorization handled in the handler.
	r.With(rateLimit, middleware.Prometheus).
		Post("/api/v1/automations/run", h.RunAutomations)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middleware.Prometheus)
		r.Use(h.authSvc.RequireSession)

		r.Route("/automations", func(r chi.Router) {
			r.Get("/", h.ListAutomations)
			r.Post("/", h.CreateAutomation)
			r.Get("/{id}", h.GetAutomation)
			r.Put("/{id}", h.UpdateAutomation)
			r.Delete("/{id}", h.DeleteAutomation)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
		})

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", h.ListChannels)
			r.Post("/", h.CreateChannel)
			r.Get("/{id}", h.GetChannel)
		})

		r.Route("/bots", func(r chi.Router) {
			r.Get("/", h.ListBots)
			r.Post("/", h.CreateBot)
			r.Get("/{id}", h.GetBot)
			r.Put("/{id}", h.UpdateBot)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Get("/{id}", h.GetPost)
		})

		r.Get("/action-logs", h.ListActionLogs)

		r.Route("/flags", func(r chi.Router) {
			r.Get("/", h.ListFlags)
			r.Put("/{name}", h.SetFlag)
		})
	})

	return r
}
