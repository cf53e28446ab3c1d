package quotes

import (
	"github.com/go-chi/chi/v5"

	"github.com/amexing/amexing-ops/internal/rbac"
)

// MountRoutes registers routes under /api/quotes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceQuote, rbac.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.With(h.rbac.Require(rbac.ResourceQuote, rbac.ActionCreate)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceQuote, rbac.ActionUpdate))
		r.Put("/{id}", h.update)
		r.Patch("/{id}/status", h.updateStatus)
	})
	r.With(h.rbac.Require(rbac.ResourceQuote, rbac.ActionDelete)).Delete("/{id}", h.remove)
	r.With(h.rbac.Require(rbac.ResourceQuote, rbac.ActionCancel)).Post("/{id}/cancel", h.cancel)
	r.With(h.rbac.Require(rbac.ResourceQuote, rbac.ActionRequestInvoice)).Post("/{id}/invoice-request", h.requestInvoice)
	r.With(h.rbac.Require(rbac.ResourceQuote, rbac.ActionReceipt)).Get("/{id}/receipt", h.receipt)
}
