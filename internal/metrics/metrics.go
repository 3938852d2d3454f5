// Package metrics exposes Prometheus collectors for the sitemap service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sitemapBuildsTotal    *prometheus.CounterVec
	sitemapURLsLast       prometheus.Gauge
	pingRequestsTotal     *prometheus.CounterVec
	indexingRequestsTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors. Safe to call more than
// once.
func Init() {
	once.Do(func() {
		sitemapBuildsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemap_builds_total",
				Help: "Total number of sitemap builds, labeled by outcome (ok, degraded).",
			},
			[]string{"outcome"},
		)

		sitemapURLsLast = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitemap_urls_last",
				Help: "Number of URL entries in the most recently built sitemap.",
			},
		)

		pingRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemap_ping_requests_total",
				Help: "Total crawler ping attempts, labeled by engine and outcome.",
			},
			[]string{"engine", "outcome"},
		)

		indexingRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexing_requests_total",
				Help: "Total Indexing API requests, labeled by action and outcome.",
			},
			[]string{"action", "outcome"},
		)
	})
}

// ObserveBuild records a sitemap build and its entry count.
func ObserveBuild(degraded bool, urlCount int) {
	if sitemapBuildsTotal == nil {
		return
	}
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	sitemapBuildsTotal.WithLabelValues(outcome).Inc()
	sitemapURLsLast.Set(float64(urlCount))
}

// ObservePing records one crawler ping attempt.
func ObservePing(engine string, success bool) {
	if pingRequestsTotal == nil {
		return
	}
	pingRequestsTotal.WithLabelValues(engine, outcomeLabel(success)).Inc()
}

// ObserveIndexing records one Indexing API request.
func ObserveIndexing(action string, success bool) {
	if indexingRequestsTotal == nil {
		return
	}
	indexingRequestsTotal.WithLabelValues(action, outcomeLabel(success)).Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
