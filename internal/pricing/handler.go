package pricing

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/shared"
)

// AdjustmentService is the behaviour the HTTP layer depends on.
type AdjustmentService interface {
	Create(ctx context.Context, actor shared.Actor, req CreateRequest) (Adjustment, error)
	Current(ctx context.Context, kind Kind) (*Adjustment, error)
	CurrentAll(ctx context.Context) (map[Kind]*Adjustment, error)
	History(ctx context.Context, kind Kind, filters HistoryFilters) ([]Adjustment, shared.Pagination, error)
	Delete(ctx context.Context, actor shared.Actor, kind Kind, id int64) error
}

// Handler exposes the price adjustment API.
type Handler struct {
	logger    *slog.Logger
	service   AdjustmentService
	rbac      rbac.Middleware
	respond   httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service AdjustmentService, rbacMW rbac.Middleware, respond httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbacMW, respond: respond, validator: httpx.NewValidator()}
}

// MountRoutes registers routes under /api/price-adjustments.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourcePriceAdjustment, rbac.ActionView))
		r.Get("/current", h.currentAll)
		r.Get("/{type}/current", h.current)
		r.Get("/{type}/history", h.history)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourcePriceAdjustment, rbac.ActionCreate))
		r.Post("/{type}", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourcePriceAdjustment, rbac.ActionDelete))
		r.Delete("/{type}/{id}", h.delete)
	})
}

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (Kind, bool) {
	kind, err := ParseKind(chi.URLParam(r, "type"))
	if err != nil {
		h.respond.Error(w, r, err, slog.String("type", chi.URLParam(r, "type")))
		return "", false
	}
	return kind, true
}

func (h *Handler) currentAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.CurrentAll(r.Context())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	out := make(map[string]*AdjustmentResponse, len(all))
	for kind, adj := range all {
		if adj == nil {
			out[kind.Slug()] = nil
			continue
		}
		resp := ToResponse(*adj)
		out[kind.Slug()] = &resp
	}
	httpx.OK(w, out)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	adj, err := h.service.Current(r.Context(), kind)
	if err != nil {
		h.respond.Error(w, r, err, slog.String("kind", string(kind)))
		return
	}
	if adj == nil {
		httpx.OK(w, nil)
		return
	}
	httpx.OK(w, ToResponse(*adj))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	sortDir := q.Get("sortOrder")
	if sortDir == "" {
		sortDir = q.Get("dir")
	}
	filters := HistoryFilters{
		Page:    httpx.QueryInt(r, "page", 1),
		Limit:   httpx.QueryInt(r, "limit", shared.DefaultPageSize),
		SortBy:  q.Get("sortBy"),
		SortDir: strings.ToLower(sortDir),
		Search:  q.Get("search"),
	}
	items, page, err := h.service.History(r.Context(), kind, filters)
	if err != nil {
		h.respond.Error(w, r, err, slog.String("kind", string(kind)))
		return
	}
	httpx.OK(w, HistoryResponse{Items: ToResponses(items), Pagination: page})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	var req CreateRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	req.Kind = kind
	adj, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respond.Error(w, r, err, slog.String("kind", string(kind)))
		return
	}
	httpx.Created(w, ToResponse(adj), kind.Label()+" actualizado correctamente")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		h.respond.Error(w, r, httpx.InvalidID())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, kind, id); err != nil {
		h.respond.Error(w, r, err, slog.Int64("id", id))
		return
	}
	httpx.OKMessage(w, map[string]int64{"id": id}, "Ajuste eliminado")
}
