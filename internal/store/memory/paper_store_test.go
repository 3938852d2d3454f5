package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyvault/sitemapd/internal/sitemap"
)

func TestPaperStore_ListApproved(t *testing.T) {
	t.Parallel()

	s := NewPaperStore()
	s.Seed([]sitemap.Paper{
		{ID: "old", Status: sitemap.StatusApproved, CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "pending", Status: "pending", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "new", Status: sitemap.StatusApproved, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})

	papers, err := s.ListApproved(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	require.Equal(t, "new", papers[0].ID)
	require.Equal(t, "old", papers[1].ID)
}

func TestPaperStore_ListApprovedHonorsLimit(t *testing.T) {
	t.Parallel()

	s := NewPaperStore()
	s.Seed([]sitemap.Paper{
		{ID: "a", Status: sitemap.StatusApproved, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Status: sitemap.StatusApproved, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c", Status: sitemap.StatusApproved, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	})

	papers, err := s.ListApproved(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	require.Equal(t, "c", papers[0].ID)
}
