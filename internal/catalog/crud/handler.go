package crud

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/shared"
)

// ResourceService is the behaviour the HTTP layer depends on.
type ResourceService[T any, C any, U any] interface {
	List(ctx context.Context, filters ListFilters) ([]T, int, int, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, actor shared.Actor, req C) (T, error)
	Update(ctx context.Context, actor shared.Actor, id int64, req U) (T, error)
	ToggleStatus(ctx context.Context, actor shared.Actor, id int64, active bool) (T, error)
	Delete(ctx context.Context, actor shared.Actor, id int64) error
}

// Handler exposes a catalog resource over the JSON API.
type Handler[T any, C any, U any] struct {
	logger    *slog.Logger
	service   ResourceService[T, C, U]
	rbac      rbac.Middleware
	resource  rbac.Resource
	respond   httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs a Handler guarded by the policy rules of resource.
func NewHandler[T any, C any, U any](logger *slog.Logger, service ResourceService[T, C, U], rbacMW rbac.Middleware, resource rbac.Resource, respond httpx.Responder) *Handler[T, C, U] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler[T, C, U]{
		logger:    logger,
		service:   service,
		rbac:      rbacMW,
		resource:  resource,
		respond:   respond,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes registers the uniform routes.
func (h *Handler[T, C, U]) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(h.resource, rbac.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.With(h.rbac.Require(h.resource, rbac.ActionCreate)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(h.resource, rbac.ActionUpdate))
		r.Put("/{id}", h.update)
		r.Patch("/{id}/toggle-status", h.toggle)
	})
	r.With(h.rbac.Require(h.resource, rbac.ActionDelete)).Delete("/{id}", h.remove)
}

func (h *Handler[T, C, U]) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		h.respond.Error(w, r, httpx.InvalidID())
	}
	return id, ok
}

func (h *Handler[T, C, U]) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		DataTablesRequest: httpx.ParseDataTables(r),
		Active:            httpx.QueryBool(r, "active"),
	}
	rows, total, filtered, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respond.Error(w, r, err, slog.String("resource", string(h.resource)))
		return
	}
	if rows == nil {
		rows = []T{}
	}
	httpx.DataTables(w, filters.DataTablesRequest, total, filtered, rows)
}

func (h *Handler[T, C, U]) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, v)
}

func (h *Handler[T, C, U]) create(w http.ResponseWriter, r *http.Request) {
	var req C
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	v, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respond.Error(w, r, err, slog.String("resource", string(h.resource)))
		return
	}
	httpx.Created(w, v, "Registro creado correctamente")
}

func (h *Handler[T, C, U]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req U
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	v, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("id", id))
		return
	}
	httpx.OKMessage(w, v, "Registro actualizado correctamente")
}

func (h *Handler[T, C, U]) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req ToggleRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	v, err := h.service.ToggleStatus(r.Context(), actor, id, *req.Active)
	if err != nil {
		h.respond.Error(w, r, err, slog.Int64("id", id))
		return
	}
	msg := "Registro desactivado"
	if *req.Active {
		msg = "Registro activado"
	}
	httpx.OKMessage(w, v, msg)
}

func (h *Handler[T, C, U]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.respond.Error(w, r, err, slog.Int64("id", id))
		return
	}
	httpx.OKMessage(w, map[string]int64{"id": id}, "Registro eliminado correctamente")
}
