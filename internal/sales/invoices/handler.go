package invoices

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/shared"
)

// InvoiceService is the behaviour the HTTP layer depends on.
type InvoiceService interface {
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, filters ListFilters) ([]Invoice, int, int, error)
	Complete(ctx context.Context, actor shared.Actor, id int64, req CompleteRequest) (Invoice, error)
	Cancel(ctx context.Context, actor shared.Actor, id int64, reason string) (Invoice, error)
}

// Handler exposes the invoice request API.
type Handler struct {
	logger    *slog.Logger
	service   InvoiceService
	rbac      rbac.Middleware
	respond   httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service InvoiceService, rbacMW rbac.Middleware, respond httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbacMW, respond: respond, validator: httpx.NewValidator()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		DataTablesRequest: httpx.ParseDataTables(r),
		Status:            Status(r.URL.Query().Get("status")),
	}
	rows, total, filtered, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []Invoice{}
	}
	httpx.DataTables(w, filters.DataTablesRequest, total, filtered, rows)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		h.respond.Error(w, r, httpx.InvalidID())
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("invoice_id", id))
		return
	}
	httpx.OK(w, inv)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		h.respond.Error(w, r, httpx.InvalidID())
		return
	}
	var req CompleteRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	inv, err := h.service.Complete(r.Context(), actor, id, req)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("invoice_id", id))
		return
	}
	httpx.OKMessage(w, toTransition(inv), "Factura completada exitosamente")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		h.respond.Error(w, r, httpx.InvalidID())
		return
	}
	var req CancelRequest
	if err := httpx.BindOptional(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	inv, err := h.service.Cancel(r.Context(), actor, id, req.Reason)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("invoice_id", id))
		return
	}
	httpx.OKMessage(w, toTransition(inv), "Solicitud de factura cancelada")
}
