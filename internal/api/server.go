// Package api exposes the HTTP interface for the sitemap service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyvault/sitemapd/internal/config"
	"github.com/studyvault/sitemapd/internal/events"
	"github.com/studyvault/sitemapd/internal/gsc"
	"github.com/studyvault/sitemapd/internal/metrics"
	"github.com/studyvault/sitemapd/internal/ping"
	"github.com/studyvault/sitemapd/internal/publish"
	"github.com/studyvault/sitemapd/internal/sitemap"
)

// SearchClient is the slice of the gsc client the handlers use.
type SearchClient interface {
	SubmitSitemap(ctx context.Context, sitemapURL string) error
	ListSitemaps(ctx context.Context) ([]gsc.SitemapRegistration, error)
	UpdateURL(ctx context.Context, pageURL string) error
	BulkUpdate(ctx context.Context, urls []string) ([]gsc.BulkResult, error)
}

// Server wires HTTP handlers to the builder, publisher, pinger, and search
// client.
type Server struct {
	router    chi.Router
	builder   *sitemap.Builder
	publisher *publish.Publisher
	pinger    *ping.Pinger
	search    SearchClient
	events    events.Publisher
	clock     sitemap.Clock
	cfg       config.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes. search and
// eventPub may be nil when the corresponding subsystem is disabled.
func NewServer(
	builder *sitemap.Builder,
	publisher *publish.Publisher,
	pinger *ping.Pinger,
	search SearchClient,
	eventPub events.Publisher,
	clock sitemap.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		builder:   builder,
		publisher: publisher,
		pinger:    pinger,
		search:    search,
		events:    eventPub,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(timeoutMiddleware(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/sitemap.xml", s.getSitemap)
	r.Get("/robots.txt", s.getRobots)

	r.Route("/api", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Post("/generate-sitemap", s.generateSitemap)
		r.Post("/ping", s.pingEngines)
		r.Route("/google-search", func(r chi.Router) {
			r.Post("/submit-sitemap", s.submitSitemap)
			r.Get("/sitemap-status", s.sitemapStatus)
			r.Post("/recrawl", s.recrawl)
			r.Post("/bulk-index", s.bulkIndex)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(logger, w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(zap.NewNop(), w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}
