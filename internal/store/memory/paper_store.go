// Package memory holds an in-memory paper store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/studyvault/sitemapd/internal/sitemap"
)

// PaperStore keeps papers in memory.
type PaperStore struct {
	mu     sync.RWMutex
	papers []sitemap.Paper
}

// NewPaperStore creates an empty store.
func NewPaperStore() *PaperStore {
	return &PaperStore{}
}

// Seed replaces the stored papers.
func (s *PaperStore) Seed(papers []sitemap.Paper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers = append([]sitemap.Paper(nil), papers...)
}

// ListApproved returns approved papers ordered by creation time descending,
// capped at limit.
func (s *PaperStore) ListApproved(_ context.Context, limit int) ([]sitemap.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sitemap.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		if p.Approved() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
