package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyvault/sitemapd/internal/config"
	eventsmemory "github.com/studyvault/sitemapd/internal/events/memory"
	"github.com/studyvault/sitemapd/internal/gsc"
	"github.com/studyvault/sitemapd/internal/ping"
	"github.com/studyvault/sitemapd/internal/publish"
	"github.com/studyvault/sitemapd/internal/sitemap"
	storememory "github.com/studyvault/sitemapd/internal/store/memory"
	storagememory "github.com/studyvault/sitemapd/internal/storage/memory"
)

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

type fakeSearch struct {
	submitted []string
	listRegs  []gsc.SitemapRegistration
	listErr   error
	updateErr map[string]error
	updated   []string
}

func (f *fakeSearch) SubmitSitemap(_ context.Context, url string) error {
	f.submitted = append(f.submitted, url)
	return nil
}

func (f *fakeSearch) ListSitemaps(context.Context) ([]gsc.SitemapRegistration, error) {
	return f.listRegs, f.listErr
}

func (f *fakeSearch) UpdateURL(_ context.Context, url string) error {
	f.updated = append(f.updated, url)
	if err, ok := f.updateErr[url]; ok {
		return err
	}
	return nil
}

func (f *fakeSearch) BulkUpdate(ctx context.Context, urls []string) ([]gsc.BulkResult, error) {
	results := make([]gsc.BulkResult, 0, len(urls))
	for _, u := range urls {
		res := gsc.BulkResult{URL: u, Success: true}
		if err := f.UpdateURL(ctx, u); err != nil {
			res.Success = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

type serverFixture struct {
	server *Server
	blobs  *storagememory.BlobStore
	events *eventsmemory.Publisher
	search *fakeSearch
}

func newTestServer(t *testing.T, mutate func(*config.Config)) serverFixture {
	t.Helper()

	cfg := config.Config{
		Server: config.ServerConfig{Port: 8080, TimeoutSeconds: 5},
		Site:   config.SiteConfig{BaseURL: "https://example.com"},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	papers := storememory.NewPaperStore()
	papers.Seed([]sitemap.Paper{
		{ID: "42", Status: sitemap.StatusApproved, Subject: "Math",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	clock := fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	builder := sitemap.NewBuilder(cfg.Site.BaseURL, sitemap.DefaultStaticRoutes(), papers, 1000, clock, zap.NewNop())

	blobs := storagememory.NewBlobStore()
	eventPub := eventsmemory.New()
	search := &fakeSearch{}

	server := NewServer(
		builder,
		publish.New(blobs, zap.NewNop()),
		ping.New(nil, &http.Client{}, zap.NewNop()),
		search,
		eventPub,
		clock,
		cfg,
		zap.NewNop(),
	)
	return serverFixture{server: server, blobs: blobs, events: eventPub, search: search}
}

func TestGetSitemapXML(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	require.Contains(t, rec.Body.String(), "<loc>https://example.com/browse?paper=42</loc>")
	require.Contains(t, rec.Body.String(), "<lastmod>2024-01-01</lastmod>")
}

func TestGetRobotsTxt(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	require.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestGenerateSitemapWritesArtifactsAndEmitsEvent(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/generate-sitemap", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":true`)
	require.Contains(t, rec.Body.String(), "memory://sitemap.xml")

	_, ok := fx.blobs.Get(publish.SitemapPath)
	require.True(t, ok)
	_, ok = fx.blobs.Get(publish.RobotsPath)
	require.True(t, ok)

	msgs := fx.events.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "sitemap.generated", msgs[0].Topic)
}

func TestSubmitSitemapUsesConfiguredURL(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/google-search/submit-sitemap", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"https://example.com/sitemap.xml"}, fx.search.submitted)
}

func TestSitemapStatusListsRegistrations(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	fx.search.listRegs = []gsc.SitemapRegistration{
		{Feedpath: "https://example.com/sitemap.xml", Type: "WEB"},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/google-search/sitemap-status", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"feedpath":"https://example.com/sitemap.xml"`)
	require.Contains(t, rec.Body.String(), `"type":"WEB"`)
}

func TestSitemapStatusEmptyList(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/google-search/sitemap-status", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"sitemaps":[]`)
}

func TestRecrawlRequiresURL(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/google-search/recrawl", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, fx.search.updated)
}

func TestRecrawlSubmitsURL(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/google-search/recrawl",
		bytes.NewBufferString(`{"url":"https://example.com/browse?paper=42"}`))
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"https://example.com/browse?paper=42"}, fx.search.updated)
}

func TestBulkIndexRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	for _, body := range []string{`{}`, `{"urls":[]}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/google-search/bulk-index", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		fx.server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	require.Empty(t, fx.search.updated)
}

func TestBulkIndexReportsPartialSuccess(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	fx.search.updateErr = map[string]error{
		"https://example.com/p2": errors.New("quota exceeded"),
	}
	body := `{"urls":["https://example.com/p1","https://example.com/p2","https://example.com/p3"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/google-search/bulk-index", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "2/3 URLs indexed successfully")
	require.Contains(t, rec.Body.String(), `"success":false`)
	require.Contains(t, rec.Body.String(), "quota exceeded")
}

func TestSearchEndpointsUnavailableWithoutClient(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	fx.server.search = nil

	req := httptest.NewRequest(http.MethodPost, "/api/google-search/submit-sitemap", nil)
	rec := httptest.NewRecorder()

	fx.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "not configured")
}

func TestAPIKeyGuardsMutatingEndpoints(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.APIKey = "secret"
	})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-sitemap", nil)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/generate-sitemap", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Public artifacts stay open.
	req = httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPingEnginesReportsPerEngineResults(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	cfg := config.Config{
		Server: config.ServerConfig{Port: 8080, TimeoutSeconds: 5},
		Site:   config.SiteConfig{BaseURL: "https://example.com"},
	}
	papers := storememory.NewPaperStore()
	clock := fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	builder := sitemap.NewBuilder(cfg.Site.BaseURL, sitemap.DefaultStaticRoutes(), papers, 1000, clock, zap.NewNop())
	pinger := ping.New(
		[]ping.Engine{
			{Name: "up", Endpoint: upstream.URL},
			{Name: "down", Endpoint: "http://127.0.0.1:1"},
		},
		upstream.Client(),
		zap.NewNop(),
	)
	server := NewServer(builder, publish.New(storagememory.NewBlobStore(), zap.NewNop()),
		pinger, nil, nil, clock, cfg, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/ping", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "1/2 engines pinged successfully")
	require.Contains(t, rec.Body.String(), `"success":true`)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	fx := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		fx.server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
