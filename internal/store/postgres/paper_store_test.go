package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/studyvault/sitemapd/internal/sitemap"
)

func TestListApprovedScansRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPaperStoreWithPool(mock)
	require.NoError(t, err)

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	subject := "Math"
	rows := pgxmock.NewRows([]string{"id", "status", "subject", "course", "college", "created_at"}).
		AddRow("42", sitemap.StatusApproved, &subject, (*string)(nil), (*string)(nil), &createdAt)

	mock.ExpectQuery("SELECT id, status, subject, course, college, created_at").
		WithArgs(sitemap.StatusApproved, 1000).
		WillReturnRows(rows)

	papers, err := store.ListApproved(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	require.Equal(t, "42", papers[0].ID)
	require.Equal(t, "Math", papers[0].Subject)
	require.Empty(t, papers[0].Course)
	require.Equal(t, createdAt, papers[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListApprovedNullCreatedAt(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPaperStoreWithPool(mock)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "status", "subject", "course", "college", "created_at"}).
		AddRow("7", sitemap.StatusApproved, (*string)(nil), (*string)(nil), (*string)(nil), (*time.Time)(nil))

	mock.ExpectQuery("SELECT id, status, subject, course, college, created_at").
		WithArgs(sitemap.StatusApproved, 50).
		WillReturnRows(rows)

	papers, err := store.ListApproved(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	require.True(t, papers[0].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListApprovedQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPaperStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, status, subject, course, college, created_at").
		WithArgs(sitemap.StatusApproved, 1000).
		WillReturnError(errors.New("connection refused"))

	_, err = store.ListApproved(context.Background(), 1000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "query papers")
}

func TestNewPaperStoreWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewPaperStoreWithPool(nil)
	require.Error(t, err)
}
