/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. httplog:    Structured request logging (slog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

SECURITY NOTE:
  Identity and session verification are owned by an external layer; the
  engine endpoints carry no authentication here.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Leave lifecycle
		r.Route("/leaves", func(r chi.Router) {
			r.Post("/", h.CreateLeave)
			r.Get("/{id}", h.GetLeave)
			r.Post("/{id}/extend", h.ExtendLeave)
			r.Post("/{id}/medical", h.AddMedicalRest)
			r.Post("/{id}/medical/extend", h.ExtendMedical)
			r.Post("/{id}/medical/approve", h.ApproveMedical)
			r.Post("/{id}/return", h.MarkReturned)
			r.Put("/{id}/dates", h.UpdateDates)
			r.Delete("/{id}", h.DeleteLeave)
		})

		// Directory and balances
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{id}/balance", h.GetBalance)
		})

		// Reporting projections
		r.Route("/reports", func(r chi.Router) {
			r.Get("/on-leave", h.ListOnLeave)
			r.Get("/arrivals", h.ListArrivals)
			r.Get("/pending-medical", h.ListPendingMedical)
		})

		// Calendar and administration
		r.Get("/holidays", h.ListHolidays)
		r.Put("/settings/{year}", h.UpdateSettings)
	})

	return r
}
