// Package store defines the read side of the paper database.
package store

import (
	"context"

	"github.com/studyvault/sitemapd/internal/sitemap"
)

// PaperStore reads approved papers for sitemap generation. Implementations
// must return papers ordered by creation time descending and respect limit.
type PaperStore interface {
	ListApproved(ctx context.Context, limit int) ([]sitemap.Paper, error)
}
