// Package ping notifies search-engine ping endpoints that the sitemap
// changed. Pings are best-effort: a failed engine never blocks the rest and
// never raises past this package.
package ping

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Engine is one configured ping endpoint, e.g. http://www.google.com/ping.
type Engine struct {
	Name     string
	Endpoint string
}

// Result captures one ping attempt.
type Result struct {
	Engine     string `json:"engine"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Pinger issues sitemap pings over an injectable HTTP client.
type Pinger struct {
	engines []Engine
	client  *http.Client
	logger  *zap.Logger
	observe func(engine string, success bool)
}

// Option customizes a Pinger.
type Option func(*Pinger)

// WithObserver registers a per-ping metrics callback.
func WithObserver(fn func(engine string, success bool)) Option {
	return func(p *Pinger) { p.observe = fn }
}

// New constructs a Pinger.
func New(engines []Engine, client *http.Client, logger *zap.Logger, opts ...Option) *Pinger {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pinger{engines: engines, client: client, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Notify pings a single engine with the sitemap URL. Success means an HTTP
// status in [200,300). Transport errors resolve as a failed Result.
func (p *Pinger) Notify(ctx context.Context, engine Engine, sitemapURL string) Result {
	pingURL := fmt.Sprintf("%s?sitemap=%s", engine.Endpoint, url.QueryEscape(sitemapURL))
	res := Result{Engine: engine.Name}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pingURL, nil)
	if err != nil {
		res.Error = err.Error()
		p.finish(engine.Name, res)
		return res
	}
	resp, err := p.client.Do(req)
	if err != nil {
		res.Error = err.Error()
		p.finish(engine.Name, res)
		return res
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Debug("close ping response body", zap.Error(closeErr))
		}
	}()

	res.StatusCode = resp.StatusCode
	res.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !res.Success {
		res.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	p.finish(engine.Name, res)
	return res
}

// NotifyAll pings every configured engine in order. Failures are independent
// per engine.
func (p *Pinger) NotifyAll(ctx context.Context, sitemapURL string) []Result {
	results := make([]Result, 0, len(p.engines))
	for _, engine := range p.engines {
		results = append(results, p.Notify(ctx, engine, sitemapURL))
	}
	return results
}

func (p *Pinger) finish(engine string, res Result) {
	if res.Success {
		p.logger.Info("sitemap ping succeeded",
			zap.String("engine", engine), zap.Int("status", res.StatusCode))
	} else {
		p.logger.Warn("sitemap ping failed",
			zap.String("engine", engine), zap.Int("status", res.StatusCode),
			zap.String("error", res.Error))
	}
	if p.observe != nil {
		p.observe(engine, res.Success)
	}
}
