package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/studyvault/sitemapd/internal/events"
	"github.com/studyvault/sitemapd/internal/gsc"
	"github.com/studyvault/sitemapd/internal/metrics"
	"github.com/studyvault/sitemapd/internal/sitemap"
)

const (
	sitemapCacheControl = "public, max-age=3600"
	robotsCacheControl  = "public, max-age=86400"
)

func (s *Server) getSitemap(w http.ResponseWriter, r *http.Request) {
	doc, degraded := s.builder.Build(r.Context())
	metrics.ObserveBuild(degraded, len(doc.Entries))
	body, err := doc.XML()
	if err != nil {
		s.logger.Error("sitemap serialization failed", zap.Error(err))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, "sitemap generation failed")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", sitemapCacheControl)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("write sitemap response", zap.Error(err))
	}
}

func (s *Server) getRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", robotsCacheControl)
	if _, err := w.Write([]byte(sitemap.Robots(s.cfg.Site.BaseURL))); err != nil {
		s.logger.Error("write robots response", zap.Error(err))
	}
}

func (s *Server) generateSitemap(w http.ResponseWriter, r *http.Request) {
	doc, degraded := s.builder.Build(r.Context())
	metrics.ObserveBuild(degraded, len(doc.Entries))

	result, err := s.publisher.Publish(r.Context(), doc)
	if err != nil {
		s.logger.Error("sitemap publish failed", zap.Error(err))
		writeJSON(s.logger, w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	now := s.clock.Now()
	if s.events != nil {
		event := events.SitemapGenerated{
			SitemapURI:  result.SitemapURI,
			URLCount:    len(doc.Entries),
			GeneratedAt: now,
		}
		if _, err := s.events.Publish(r.Context(), "sitemap.generated", event); err != nil {
			s.logger.Warn("sitemap event publish failed", zap.Error(err))
		}
	}

	writeJSON(s.logger, w, http.StatusOK, map[string]any{
		"success":   true,
		"path":      result.SitemapURI,
		"timestamp": now,
	})
}

func (s *Server) pingEngines(w http.ResponseWriter, r *http.Request) {
	results := s.pinger.NotifyAll(r.Context(), s.cfg.Site.SitemapURL())
	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{
		"success": succeeded > 0,
		"message": fmt.Sprintf("%d/%d engines pinged successfully", succeeded, len(results)),
		"results": results,
	})
}

func (s *Server) submitSitemap(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.searchUnavailable(w)
		return
	}
	sitemapURL := s.cfg.Site.SitemapURL()
	if err := s.search.SubmitSitemap(r.Context(), sitemapURL); err != nil {
		s.searchError(w, "sitemap submission failed", err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{
		"success": true,
		"message": "sitemap submitted to Google Search Console",
		"details": map[string]string{"sitemap": sitemapURL},
	})
}

func (s *Server) sitemapStatus(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.searchUnavailable(w)
		return
	}
	regs, err := s.search.ListSitemaps(r.Context())
	if err != nil {
		s.searchError(w, "sitemap status lookup failed", err)
		return
	}
	if regs == nil {
		regs = []gsc.SitemapRegistration{}
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("%d sitemap(s) registered", len(regs)),
		"sitemaps": regs,
	})
}

func (s *Server) recrawl(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.searchUnavailable(w)
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(s.logger, w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "url is required",
		})
		return
	}
	err := s.search.UpdateURL(r.Context(), req.URL)
	metrics.ObserveIndexing(gsc.ActionURLUpdated, err == nil)
	if err != nil {
		s.searchError(w, "recrawl request failed", err)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{
		"success": true,
		"message": "recrawl requested",
		"details": map[string]string{"url": req.URL},
	})
}

func (s *Server) bulkIndex(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.searchUnavailable(w)
		return
	}
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URLs) == 0 {
		writeJSON(s.logger, w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "urls must be a non-empty array",
		})
		return
	}
	results, err := s.search.BulkUpdate(r.Context(), req.URLs)
	if err != nil {
		s.searchError(w, "bulk indexing failed", err)
		return
	}
	succeeded := 0
	for _, res := range results {
		metrics.ObserveIndexing(gsc.ActionURLUpdated, res.Success)
		if res.Success {
			succeeded++
		}
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{
		"success": succeeded == len(results),
		"message": fmt.Sprintf("%d/%d URLs indexed successfully", succeeded, len(results)),
		"results": results,
	})
}

func (s *Server) searchUnavailable(w http.ResponseWriter) {
	writeJSON(s.logger, w, http.StatusServiceUnavailable, map[string]any{
		"success": false,
		"message": "search client not configured",
	})
}

func (s *Server) searchError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, gsc.ErrNotInitialized) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(s.logger, w, status, map[string]any{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
