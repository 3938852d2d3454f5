package gsc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// SitemapRegistration is one sitemap the search console knows about. The
// registration set is owned by the external service; it is never cached here
// beyond a single listing response.
type SitemapRegistration struct {
	Feedpath string `json:"feedpath"`
	Type     string `json:"type"`
}

// SubmitSitemap registers a sitemap feed path with the property. The call is
// idempotent: resubmitting an already-registered URL succeeds.
func (c *Client) SubmitSitemap(ctx context.Context, sitemapURL string) error {
	if err := c.ensureInit(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.sitemapEndpoint(sitemapURL), nil)
	if err != nil {
		return fmt.Errorf("build submit request: %w", err)
	}
	if _, err := c.do(req, c.webClient); err != nil {
		return fmt.Errorf("submit sitemap: %w", err)
	}
	c.logger.Info("sitemap submitted", zap.String("sitemap", sitemapURL))
	return nil
}

// ListSitemaps returns the property's current registrations. An empty list
// is a valid, non-error result.
func (c *Client) ListSitemaps(ctx context.Context) ([]SitemapRegistration, error) {
	if err := c.ensureInit(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/sites/%s/sitemaps", c.webmastersBase, url.PathEscape(c.property))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	body, err := c.do(req, c.webClient)
	if err != nil {
		return nil, fmt.Errorf("list sitemaps: %w", err)
	}

	var payload struct {
		Sitemap []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"sitemap"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode sitemap listing: %w", err)
	}
	regs := make([]SitemapRegistration, 0, len(payload.Sitemap))
	for _, s := range payload.Sitemap {
		regs = append(regs, SitemapRegistration{Feedpath: s.Path, Type: s.Type})
	}
	return regs, nil
}

// DeleteSitemap removes a registration.
func (c *Client) DeleteSitemap(ctx context.Context, sitemapURL string) error {
	if err := c.ensureInit(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.sitemapEndpoint(sitemapURL), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	if _, err := c.do(req, c.webClient); err != nil {
		return fmt.Errorf("delete sitemap: %w", err)
	}
	c.logger.Info("sitemap registration deleted", zap.String("sitemap", sitemapURL))
	return nil
}

func (c *Client) sitemapEndpoint(sitemapURL string) string {
	return fmt.Sprintf("%s/sites/%s/sitemaps/%s",
		c.webmastersBase, url.PathEscape(c.property), url.PathEscape(sitemapURL))
}
