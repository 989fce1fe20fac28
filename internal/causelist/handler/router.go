package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"causelist/internal/platform/middleware"
	"causelist/pkg/platform/httputil"
)

// RouterConfig carries what the router needs beyond the handler.
type RouterConfig struct {
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	// Ready is probed by /healthz. Nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter assembles the full HTTP surface.
func NewRouter(h *Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	h.Register(r)
	r.Route("/api", func(api chi.Router) {
		// Without configured origins the API stays same-origin.
		if len(cfg.AllowedOrigins) > 0 {
			api.Use(cors.New(cors.Options{
				AllowedOrigins:   cfg.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost},
				AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
				AllowCredentials: true,
			}).Handler)
		}
		h.RegisterAPI(api)
	})
	return r
}
