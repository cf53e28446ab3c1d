package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/amexing/amexing-ops/internal/shared"
)

const internalErrorMessage = "Error interno del servidor"

var defaultMessages = map[int]string{
	http.StatusBadRequest:   "Solicitud inválida",
	http.StatusUnauthorized: "Autenticación requerida",
	http.StatusForbidden:    "No tiene permisos para realizar esta acción",
	http.StatusNotFound:     "Recurso no encontrado",
	http.StatusConflict:     "El recurso ya existe o fue modificado",
}

// StatusFor maps an error kind onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrCSRFTokenMissing), errors.Is(err, shared.ErrCSRFTokenMismatch):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Responder writes error envelopes and logs them with request context.
// Verbose exposes raw internal error text and is only enabled outside
// production.
type Responder struct {
	Logger  *slog.Logger
	Verbose bool
}

// Error maps err to a status code and writes the error envelope.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error, attrs ...any) {
	status := StatusFor(err)
	message := shared.UserSafeMessage(err)
	code := shared.ErrorCode(err)

	if status == http.StatusInternalServerError {
		message = internalErrorMessage
		if rs.Verbose {
			message = err.Error()
		}
	} else if message == "" {
		message = defaultMessages[status]
	}

	rs.log(r, status, err, attrs)
	Fail(w, status, message, code)
}

func (rs Responder) log(r *http.Request, status int, err error, attrs []any) {
	logger := rs.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fields := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("error", err),
	}
	if actor, ok := shared.ActorFromContext(r.Context()); ok {
		fields = append(fields, slog.Int64("actor_id", actor.ID), slog.String("role", string(actor.Role)))
	}
	fields = append(fields, attrs...)

	switch {
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "request failed", fields...)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logger.WarnContext(r.Context(), "request denied", fields...)
	default:
		logger.InfoContext(r.Context(), "request rejected", fields...)
	}
}
