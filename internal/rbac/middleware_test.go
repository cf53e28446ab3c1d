package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/shared"
)

type stubStore struct {
	actors map[int64]shared.Actor
	err    error
}

func (s stubStore) FindActor(_ context.Context, id int64) (shared.Actor, error) {
	if s.err != nil {
		return shared.Actor{}, s.err
	}
	actor, ok := s.actors[id]
	if !ok {
		return shared.Actor{}, ErrNotFound
	}
	return actor, nil
}

type stubTokens map[string]int64

func (s stubTokens) Verify(token string) (int64, error) {
	id, ok := s[token]
	if !ok {
		return 0, errors.New("bad token")
	}
	return id, nil
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(actor.Role))
	})
}

func newMiddleware() Middleware {
	store := stubStore{actors: map[int64]shared.Actor{
		1: {ID: 1, Role: shared.RoleSuperAdmin},
		2: {ID: 2, Role: shared.RoleDepartmentManager},
		3: {ID: 3, Role: shared.RoleEmployee},
	}}
	return Middleware{Service: NewService(store), Tokens: stubTokens{"good": 2}, Policy: DefaultPolicy()}
}

func TestPolicyLevels(t *testing.T) {
	p := DefaultPolicy()
	manager := shared.Actor{ID: 2, Role: shared.RoleDepartmentManager}
	employee := shared.Actor{ID: 3, Role: shared.RoleEmployee}
	admin := shared.Actor{ID: 4, Role: shared.RoleAdmin}

	assert.True(t, p.Allows(manager, ResourceQuote, ActionUpdate))
	assert.False(t, p.Allows(employee, ResourceQuote, ActionUpdate))
	assert.False(t, p.Allows(manager, ResourcePriceAdjustment, ActionCreate))
	assert.True(t, p.Allows(admin, ResourcePriceAdjustment, ActionCreate))
	assert.False(t, p.Allows(admin, ResourcePriceAdjustment, ActionDelete))
	assert.False(t, p.Allows(admin, Resource("unknown"), ActionView), "unknown rules deny")
}

func TestAuthenticateFromSession(t *testing.T) {
	m := newMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), shared.NewTestSession(1)))
	rec := httptest.NewRecorder()

	m.Authenticate(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, string(shared.RoleSuperAdmin), rec.Body.String())
}

func TestAuthenticateFromBearer(t *testing.T) {
	m := newMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()

	m.Authenticate(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, string(shared.RoleDepartmentManager), rec.Body.String())
}

func TestAuthenticateRejectsBadBearer(t *testing.T) {
	m := newMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()

	m.Authenticate(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateUnknownUserStaysAnonymous(t *testing.T) {
	m := newMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), shared.NewTestSession(99)))
	rec := httptest.NewRecorder()

	m.Authenticate(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticateStoreFailure(t *testing.T) {
	m := Middleware{Service: NewService(stubStore{err: errors.New("db down")})}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), shared.NewTestSession(1)))
	rec := httptest.NewRecorder()

	m.Authenticate(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequire(t *testing.T) {
	m := newMiddleware()
	handler := m.Require(ResourceQuote, ActionCancel)(echoActor())

	cases := []struct {
		name   string
		actor  *shared.Actor
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "employee", actor: &shared.Actor{ID: 3, Role: shared.RoleEmployee}, status: http.StatusForbidden},
		{name: "manager", actor: &shared.Actor{ID: 2, Role: shared.RoleDepartmentManager}, status: http.StatusOK},
		{name: "superadmin", actor: &shared.Actor{ID: 1, Role: shared.RoleSuperAdmin}, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/quotes/1/cancel", nil)
			if tc.actor != nil {
				req = req.WithContext(shared.ContextWithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.status >= 400 {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}
