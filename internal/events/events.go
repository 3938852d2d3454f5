// Package events defines the sitemap lifecycle event publisher.
package events

import (
	"context"
	"time"
)

// SitemapGenerated is emitted after a successful rebuild and publish.
type SitemapGenerated struct {
	SitemapURI  string    `json:"sitemap_uri"`
	URLCount    int       `json:"url_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Publisher pushes events to an operational channel. Publishing is
// best-effort; callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
