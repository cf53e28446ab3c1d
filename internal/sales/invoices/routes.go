package invoices

import (
	"github.com/go-chi/chi/v5"

	"github.com/amexing/amexing-ops/internal/rbac"
)

// MountRoutes registers routes under /api/invoices.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceInvoice, rbac.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceInvoice, rbac.ActionProcess))
		r.Put("/{id}/complete", h.complete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceInvoice, rbac.ActionCancel))
		r.Delete("/{id}", h.cancel)
	})
}
