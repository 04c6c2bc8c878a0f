/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/pharmacies/*    Pharmacy context registry
  /api/workers         Worker membership/profile registry
  /api/shifts/*        Shift postings, occurrences, escalation, interests
  /api/interests/*     Identity reveal
  /api/rejections      Occurrence rejections
  /api/offers          Rejection-filtered offer feed
  /api/assignments/*   Assignments, invoice lines, leave/swap filing
  /api/leave/*         Leave decisions
  /api/swaps/*         Swap decisions
  /api/seed            Demo data (dev only)
  /api/reset           Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Pharmacy and worker context registry
		r.Route("/pharmacies", func(r chi.Router) {
			r.Post("/", h.RegisterPharmacy)
			r.Get("/{id}", h.GetPharmacy)
		})
		r.Post("/workers", h.RegisterWorker)

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Get("/{id}", h.GetShift)
			r.Get("/{id}/occurrences", h.GetOccurrences)
			r.Post("/{id}/escalate", h.EscalateShift)
			r.Get("/{id}/interests", h.ListInterests)
			r.Post("/{id}/interests", h.ExpressInterest)
		})

		// Interest routes
		r.Post("/interests/{id}/reveal", h.RevealInterest)
		r.Post("/rejections", h.RejectOccurrence)
		r.Get("/offers", h.ListOffers)

		// Assignment routes
		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Get("/{id}", h.GetAssignment)
			r.Get("/{id}/invoice-line", h.GetInvoiceLine)
			r.Post("/{id}/leave", h.FileLeave)
			r.Post("/{id}/swaps", h.FileSwap)
		})

		// Leave and swap decisions
		r.Post("/leave/{id}/decide", h.DecideLeave)
		r.Post("/swaps/{id}/decide", h.DecideSwap)

		// Dev conveniences
		r.Post("/seed", h.LoadSeed)
		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
