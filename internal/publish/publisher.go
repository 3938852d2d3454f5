// Package publish writes the generated sitemap and robots.txt artifacts.
package publish

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/studyvault/sitemapd/internal/sitemap"
	"github.com/studyvault/sitemapd/internal/storage"
)

// Artifact paths within the blob store.
const (
	SitemapPath = "sitemap.xml"
	RobotsPath  = "robots.txt"
)

// Result reports where the artifacts landed.
type Result struct {
	SitemapURI string `json:"sitemap_uri"`
	RobotsURI  string `json:"robots_uri"`
}

// Publisher serializes documents and writes them through a blob store. The
// store's atomic-replace discipline is the only safeguard against concurrent
// readers observing a torn artifact.
type Publisher struct {
	blobs  storage.BlobStore
	logger *zap.Logger
}

// New constructs a Publisher.
func New(blobs storage.BlobStore, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{blobs: blobs, logger: logger}
}

// Publish writes the sitemap document and its robots.txt companion.
func (p *Publisher) Publish(ctx context.Context, doc sitemap.Document) (Result, error) {
	body, err := doc.XML()
	if err != nil {
		return Result{}, fmt.Errorf("serialize sitemap: %w", err)
	}

	sitemapURI, err := p.blobs.PutObject(ctx, SitemapPath, "application/xml", body)
	if err != nil {
		return Result{}, fmt.Errorf("write sitemap: %w", err)
	}

	robotsURI, err := p.blobs.PutObject(ctx, RobotsPath, "text/plain", []byte(sitemap.Robots(doc.BaseURL)))
	if err != nil {
		return Result{}, fmt.Errorf("write robots.txt: %w", err)
	}

	p.logger.Info("published sitemap artifacts",
		zap.String("sitemap", sitemapURI),
		zap.String("robots", robotsURI),
		zap.Int("urls", len(doc.Entries)),
	)
	return Result{SitemapURI: sitemapURI, RobotsURI: robotsURI}, nil
}
