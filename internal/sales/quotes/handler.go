package quotes

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/shared"
)

// QuoteService is the behaviour the HTTP layer depends on.
type QuoteService interface {
	Create(ctx context.Context, actor shared.Actor, req CreateRequest) (Quote, error)
	Get(ctx context.Context, id int64) (Quote, error)
	List(ctx context.Context, filters ListFilters) ([]Quote, int, int, error)
	UpdateStatus(ctx context.Context, actor shared.Actor, id int64, status Status, reason string) (StatusChange, error)
	Update(ctx context.Context, actor shared.Actor, id int64, req UpdateRequest) (Quote, error)
	SoftDelete(ctx context.Context, actor shared.Actor, id int64, reason string) error
	RequestInvoice(ctx context.Context, actor shared.Actor, id int64) (invoices.Invoice, error)
	CancelReservation(ctx context.Context, actor shared.Actor, id int64, reason string) (Quote, error)
	GenerateReceipt(ctx context.Context, actor shared.Actor, id int64, includePaymentInfo *bool) (Receipt, error)
}

// Handler exposes the quote API.
type Handler struct {
	logger    *slog.Logger
	service   QuoteService
	rbac      rbac.Middleware
	respond   httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service QuoteService, rbacMW rbac.Middleware, respond httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbacMW, respond: respond, validator: httpx.NewValidator()}
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		h.respond.Error(w, r, httpx.InvalidID())
	}
	return id, ok
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
		rows = []Quote{}
	}
	httpx.DataTables(w, filters.DataTablesRequest, total, filtered, rows)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	quote, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	httpx.Created(w, quote, "Cotización creada")
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	quote, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id))
		return
	}
	httpx.OK(w, quote)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	quote, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id))
		return
	}
	httpx.OKMessage(w, quote, "Cotización actualizada")
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	change, err := h.service.UpdateStatus(r.Context(), actor, id, Status(req.Status), req.Reason)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id), slog.String("status", req.Status))
		return
	}
	httpx.OKMessage(w, change, "Estado actualizado a "+change.New.Label())
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if err := httpx.BindOptional(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.SoftDelete(r.Context(), actor, id, req.Reason); err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id))
		return
	}
	httpx.OKMessage(w, map[string]int64{"id": id}, "Cotización eliminada")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if err := httpx.BindOptional(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	quote, err := h.service.CancelReservation(r.Context(), actor, id, req.Reason)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id))
		return
	}
	httpx.OKMessage(w, quote, "Reservación cancelada")
}

func (h *Handler) requestInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	inv, err := h.service.RequestInvoice(r.Context(), actor, id)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id))
		return
	}
	httpx.Created(w, inv, "Solicitud de factura registrada")
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	receipt, err := h.service.GenerateReceipt(r.Context(), actor, id, httpx.QueryBool(r, "includePaymentInfo"))
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("quote_id", id))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=\""+receipt.Filename+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(receipt.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(receipt.PDF)
}
