// Package router sets up all HTTP routes and middleware chains for the
// buttonshop API. Catalog reads are open; the write endpoints sit behind
// a per-client rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"buttonshop/internal/handlers"
	"buttonshop/internal/middleware"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Catalog  *handlers.Catalog
	Shop     *handlers.Shop
	Requests *handlers.Requests
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter guards the write endpoints.
func New(h Handlers, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.Catalog.Roots)
		r.Get("/categories/*", h.Catalog.Category)

		r.Get("/pricing", h.Shop.Pricing)
		r.Get("/requests/{id}", h.Requests.Get)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/cart/quote", h.Shop.CartQuote)
			r.Post("/requests", h.Requests.Create)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found."}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
