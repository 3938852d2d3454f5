package gsc

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RefreshSitemap retires superseded sitemap registrations and registers
// newURL. When oldURLs are given, only those are deleted; otherwise every
// registration other than newURL is considered superseded.
//
// The workflow is terminal on completion or on the first failing step; a
// failure after authorization propagates an error naming the step. Calling
// before Init returns ErrNotInitialized without any network I/O.
func (c *Client) RefreshSitemap(ctx context.Context, newURL string, oldURLs ...string) error {
	if err := c.ensureInit(); err != nil {
		return err
	}

	existing, err := c.ListSitemaps(ctx)
	if err != nil {
		return fmt.Errorf("refresh: list existing sitemaps: %w", err)
	}

	superseded := make([]string, 0, len(existing))
	if len(oldURLs) > 0 {
		registered := make(map[string]struct{}, len(existing))
		for _, reg := range existing {
			registered[reg.Feedpath] = struct{}{}
		}
		for _, old := range oldURLs {
			if _, ok := registered[old]; ok {
				superseded = append(superseded, old)
			}
		}
	} else {
		for _, reg := range existing {
			if reg.Feedpath != newURL {
				superseded = append(superseded, reg.Feedpath)
			}
		}
	}

	for _, old := range superseded {
		if err := c.DeleteSitemap(ctx, old); err != nil {
			return fmt.Errorf("refresh: delete superseded sitemap %q: %w", old, err)
		}
	}

	if err := c.SubmitSitemap(ctx, newURL); err != nil {
		return fmt.Errorf("refresh: submit new sitemap: %w", err)
	}

	c.logger.Info("sitemap refresh complete",
		zap.String("sitemap", newURL), zap.Int("retired", len(superseded)))
	return nil
}
