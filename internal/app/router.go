package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/amexing/amexing-ops/internal/auth"
	"github.com/amexing/amexing-ops/internal/observability"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/shared"
	"github.com/amexing/amexing-ops/internal/view"
	"github.com/amexing/amexing-ops/web"
)

// RouteMounter is implemented by every module handler.
type RouteMounter interface {
	MountRoutes(r chi.Router)
}

// APIRoute mounts a module handler below /api.
type APIRoute struct {
	Path    string
	Handler RouteMounter
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	RBACMiddleware rbac.Middleware
	API            []APIRoute
	ReportHandler  RouteMounter
	JobHandler     RouteMounter
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Amexing defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.With(params.RBACMiddleware.Authenticate).Get("/", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		sess := shared.SessionFromContext(r.Context())
		var (
			csrfToken string
			flash     *shared.FlashMessage
		)
		if sess != nil && params.CSRFManager != nil {
			csrfToken, _ = params.CSRFManager.EnsureToken(sess)
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:       "Amexing",
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
			Actor:       &actor,
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(params.RBACMiddleware.Authenticate)
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountAPIRoutes)
		}
		for _, route := range params.API {
			if route.Handler == nil {
				continue
			}
			r.Route(route.Path, route.Handler.MountRoutes)
		}
	})

	if params.ReportHandler != nil {
		r.Route("/report", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Authenticate, params.RBACMiddleware.Require(rbac.ResourceJobs, rbac.ActionView))
			params.ReportHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Authenticate, params.RBACMiddleware.Require(rbac.ResourceJobs, rbac.ActionView))
			params.JobHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers cache embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
