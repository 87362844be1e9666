package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freema/coauthor/api"
	"github.com/freema/coauthor/internal/config"
	"github.com/freema/coauthor/internal/lifecycle"
	"github.com/freema/coauthor/internal/redisclient"
	"github.com/freema/coauthor/internal/server/handlers"
	"github.com/freema/coauthor/internal/server/middleware"
	"github.com/freema/coauthor/internal/server/web"
	"github.com/freema/coauthor/internal/store"
)

// Server is the HTTP server.
type Server struct {
	httpServer *http.Server
	health     *handlers.HealthHandler
}

// New creates and configures the HTTP server with all routes and middleware.
// cache may be nil when the profile cache and rate limiter are disabled.
func New(cfg *config.Config, s store.Store, controller *lifecycle.Controller, cache *redisclient.Client, version string) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimw.Timeout(60 * time.Second))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(s, cache, version)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Handle("/metrics", promhttp.Handler())

	// Roster UI
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(web.IndexHTML)
	})

	// API docs
	docsHandler := handlers.NewDocsHandler(api.OpenAPISpec)
	r.Get("/api/docs", docsHandler.SwaggerUI)
	r.Get("/api/docs/openapi.yaml", docsHandler.OpenAPISpec)

	// Roster API
	coauthorHandler := handlers.NewCoAuthorHandler(controller)
	r.Route("/api/v1/coauthors", func(r chi.Router) {
		if cfg.RateLimit.Enabled && cache != nil {
			limiter := middleware.NewRateLimiter(cache, cfg.RateLimit.WritesPerMinute, time.Minute)
			r.With(limiter.Middleware()).Post("/", coauthorHandler.Create)
		} else {
			r.Post("/", coauthorHandler.Create)
		}
		r.Get("/", coauthorHandler.List)
		r.Delete("/{username}", coauthorHandler.Delete)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		health:     healthHandler,
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	slog.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}
