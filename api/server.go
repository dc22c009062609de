/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for the dashboard frontend
  5. RequireAuth: Bearer-token verification (all routes except login)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/login", h.Login)

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.JWTSecret))

			// Agent routes
			r.Route("/agents", func(r chi.Router) {
				r.Get("/", h.ListAgents)
				r.Post("/", h.CreateAgent)
				r.Get("/{id}", h.GetAgent)
				r.Delete("/{id}", h.DeleteAgent)
				r.Get("/{id}/balance", h.GetBalance)
			})

			// Leave request routes
			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", h.ListLeaves)
				r.Post("/", h.CreateLeave)
				r.Post("/{id}/approve", h.ApproveLeave)
				r.Post("/{id}/refuse", h.RefuseLeave)
				r.Delete("/{id}", h.DeleteLeave)
			})

			// Schedule routes
			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", h.GetSchedules)
				r.Get("/{agentId}/week", h.GetAgentWeek)
				r.Put("/{key}", h.PutWeek)
			})
		})
	})

	return r
}
