package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amexing/amexing-ops/internal/auth"
	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/shared"
	"github.com/amexing/amexing-ops/internal/view"
	_ "github.com/amexing/amexing-ops/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func hashedUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{ID: 1, Email: "ana@amexing.test", Name: "Ana", PasswordHash: string(hashed), Role: shared.RoleAdmin, IsActive: true}
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	tokens, err := auth.NewTokens("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)
	handler := auth.NewHandler(nil, auth.NewService(repo, tokens), templates, sessionManager, csrfManager, httpx.Responder{})
	return handler, sessionManager
}

func serve(t *testing.T, handler *auth.Handler, sm *shared.SessionManager, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	newChi(handler).ServeHTTP(res, req)
	require.NoError(t, sm.Commit(ctx, res, sess))
	return res, sess
}

func TestLoginPage(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	res, sess := serve(t, handler, sm, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: hashedUser(t, "correctpass")})

	form := url.Values{"email": {"ana@amexing.test"}, "password": {"wrongpass1"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, sess := serve(t, handler, sm, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Correo o contraseña incorrectos")
	assert.Zero(t, sess.User())
}

func TestLoginSuccessRotatesSession(t *testing.T) {
	repo := &stubRepo{user: hashedUser(t, "correctpass")}
	handler, sm := newAuthHandler(t, repo)

	form := url.Values{"email": {"ana@amexing.test"}, "password": {"correctpass"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, sess := serve(t, handler, sm, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))
	assert.Equal(t, int64(1), sess.User())
	assert.Equal(t, int64(1), repo.sessions[sess.ID])
}

func TestIssueToken(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: hashedUser(t, "correctpass")})

	body := `{"email":"ana@amexing.test","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serve(t, handler, sm, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"tokenType":"Bearer"`)
	assert.Contains(t, res.Body.String(), `"success":true`)
}

func TestIssueTokenRejectsBadPassword(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: hashedUser(t, "correctpass")})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(`{"email":"ana@amexing.test","password":"nope"}`))
	res, _ := serve(t, handler, sm, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), `"success":false`)
}

func TestIssueTokenRejectsMalformedBody(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(`{`))
	res, _ := serve(t, handler, sm, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}
