package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/shared"
)

// TokenVerifier validates API bearer tokens and returns the subject user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Middleware wires principal resolution and policy checks for HTTP handlers.
type Middleware struct {
	Service *Service
	Tokens  TokenVerifier
	Policy  Policy
	Logger  *slog.Logger
}

// Authenticate resolves the principal from a bearer token or the session
// and stores it in the request context. Anonymous requests pass through;
// Require decides whether they may continue.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		var userID int64
		if token, ok := bearerToken(r); ok {
			if m.Tokens == nil {
				httpx.Fail(w, http.StatusUnauthorized, "Token inválido", "auth.invalid_token")
				return
			}
			id, err := m.Tokens.Verify(token)
			if err != nil {
				m.logger().WarnContext(r.Context(), "bearer token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				httpx.Fail(w, http.StatusUnauthorized, "Token inválido o expirado", "auth.invalid_token")
				return
			}
			userID = id
		} else if sess := shared.SessionFromContext(r.Context()); sess != nil {
			userID = sess.User()
		}

		if userID == 0 || m.Service == nil {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := m.Service.Actor(r.Context(), userID)
		if err != nil {
			if !IsNotFound(err) {
				m.logger().ErrorContext(r.Context(), "resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
				httpx.Fail(w, http.StatusInternalServerError, "Error interno del servidor", "")
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// Require rejects requests whose principal is missing (401) or below the
// level the policy demands for res/act (403).
func (m Middleware) Require(res Resource, act Action) func(http.Handler) http.Handler {
	policy := m.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "Autenticación requerida", "auth.required")
				return
			}
			if !policy.Allows(actor, res, act) {
				m.logger().WarnContext(r.Context(), "access denied",
					slog.Int64("actor_id", actor.ID),
					slog.String("role", string(actor.Role)),
					slog.String("resource", string(res)),
					slog.String("action", string(act)),
				)
				httpx.Fail(w, http.StatusForbidden, "No tiene permisos para realizar esta acción", "auth.forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// HasBearerToken reports whether r authenticates with an API token rather
// than the session cookie.
func HasBearerToken(r *http.Request) bool {
	_, ok := bearerToken(r)
	return ok
}
