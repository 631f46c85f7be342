package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitea.jw6.us/james/vcardedit/internal/auth"
	"gitea.jw6.us/james/vcardedit/internal/config"
	"gitea.jw6.us/james/vcardedit/internal/editor"
	"gitea.jw6.us/james/vcardedit/internal/http/csrf"
	"gitea.jw6.us/james/vcardedit/internal/http/ratelimit"
	"gitea.jw6.us/james/vcardedit/internal/metrics"
	"gitea.jw6.us/james/vcardedit/internal/store"
	"gitea.jw6.us/james/vcardedit/internal/ui"
)

// NewRouter wires the editor pages, the JSON API and the ops endpoints.
// uploadLimiter throttles document loads per client IP; loads are the only
// requests that start a new editing session. Client addresses are resolved by
// uploadLimiter from trusted proxies only.
func NewRouter(cfg *config.Config, store *store.Store, editorService *editor.Service, authService *auth.Service, uploadLimiter *ratelimit.IPRateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	uiHandler := ui.NewHandler(cfg, editorService, authService)
	upload := chi.Chain(uploadLimiter.Middleware(), authService.RequireSession)

	r.Group(func(r chi.Router) {
		r.Use(uiHandler.LimitBody)
		r.Use(authService.LoadSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/", uiHandler.Editor)
		r.With(upload...).Post("/load", uiHandler.Load)
		r.Post("/entities/{index}/properties", uiHandler.UpdateProperty)
		r.Get("/export", uiHandler.Export)
		r.Post("/reset", uiHandler.Reset)

		r.Route("/api/document", func(r chi.Router) {
			r.Get("/", uiHandler.GetDocumentJSON)
			r.With(upload...).Post("/", uiHandler.LoadDocumentJSON)
			r.Put("/entities/{index}/properties", uiHandler.SetPropertyJSON)
			r.Get("/export", uiHandler.ExportDocument)
		})
	})

	return r
}
