package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/rbac"
)

type pingModule struct {
	rbac rbac.Middleware
}

func (m pingModule) MountRoutes(r chi.Router) {
	r.With(m.rbac.Require(rbac.ResourceQuote, rbac.ActionView)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.OK(w, "pong")
	})
}

func newTestRouter() http.Handler {
	mw := rbac.Middleware{}
	return NewRouter(RouterParams{
		Config:         &Config{AppEnv: "test", RateLimitPerMinute: 1000},
		RBACMiddleware: mw,
		API:            []APIRoute{{Path: "/ping", Handler: pingModule{rbac: mw}}},
	})
}

func TestRouterHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterHomeRedirectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRouterAPIRequiresPrincipal(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterRejectsBadBearerWithoutVerifier(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterStaticAssetsAreCached(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestRouterStateChangingRequestNeedsSession(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "auth.csrf")
}
