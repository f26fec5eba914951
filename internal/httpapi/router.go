package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the local intent API. This is the boundary through which
// the (excluded) rendering layer drives the coordinator; it never renders
// anything itself.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/state", s.handleState)
	r.Get("/outcomes", s.handleOutcomes)
	r.Get("/health", s.handleHealth)

	r.Post("/wallet/connect", s.handleConnect)
	r.Get("/wallet/{address}", s.handleSearch)

	r.Get("/listings", s.handleListings)
	r.Post("/listings", s.handleCreate)
	r.Post("/listings/{id}/cancel", s.handleCancel)
	r.Post("/listings/{id}/purchase", s.handlePurchase)

	return r
}
