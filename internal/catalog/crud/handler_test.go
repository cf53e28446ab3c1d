package crud_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/shared"
)

func newColorRouter(t *testing.T, who *shared.Actor) http.Handler {
	svc, _, _ := newColorService(t)
	h := crud.NewHandler[color, colorRequest, colorPatch](nil, svc, rbac.Middleware{}, rbac.ResourceCatalog, httpx.Responder{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if who != nil {
				req = req.WithContext(shared.ContextWithActor(req.Context(), *who))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/colors", h.MountRoutes)
	return r
}

func call(h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var payload map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	return rec, payload
}

func TestHandlerCRUD(t *testing.T) {
	router := newColorRouter(t, &actor)

	rec, payload := call(router, http.MethodPost, "/api/colors", `{"name":"Ámbar"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := payload["data"].(map[string]any)
	assert.Equal(t, "Ámbar", data["name"])
	assert.Equal(t, true, data["active"])
	assert.Equal(t, true, data["exists"])

	rec, _ = call(router, http.MethodPost, "/api/colors", `{"name":"ámbar"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = call(router, http.MethodPost, "/api/colors", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = call(router, http.MethodPatch, "/api/colors/1/toggle-status", `{"active":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, payload["data"].(map[string]any)["active"])

	rec, _ = call(router, http.MethodPatch, "/api/colors/1/toggle-status", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = call(router, http.MethodGet, "/api/colors?draw=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, payload["draw"])
	assert.EqualValues(t, 1, payload["recordsTotal"])

	rec, _ = call(router, http.MethodDelete, "/api/colors/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(router, http.MethodGet, "/api/colors/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, payload = call(router, http.MethodGet, "/api/colors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, payload["data"])
}

func TestHandlerPolicy(t *testing.T) {
	manager := shared.Actor{ID: 4, Role: shared.RoleDepartmentManager}
	router := newColorRouter(t, &manager)

	rec, _ := call(router, http.MethodGet, "/api/colors", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(router, http.MethodPost, "/api/colors", `{"name":"Rojo"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = call(newColorRouter(t, nil), http.MethodGet, "/api/colors", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = call(newColorRouter(t, &actor), http.MethodGet, "/api/colors/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
