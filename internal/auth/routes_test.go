package auth_test

import (
	"github.com/go-chi/chi/v5"

	"github.com/amexing/amexing-ops/internal/auth"
)

func newChi(h *auth.Handler) chi.Router {
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	r.Route("/api/auth", h.MountAPIRoutes)
	return r
}
