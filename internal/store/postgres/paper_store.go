// Package postgres provides the Postgres-backed paper store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyvault/sitemapd/internal/sitemap"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type queryCloser interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PaperStore reads paper rows from Postgres.
type PaperStore struct {
	pool queryCloser
}

// NewPaperStore connects a pool using the provided config.
func NewPaperStore(ctx context.Context, cfg Config) (*PaperStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PaperStore{pool: pool}, nil
}

// NewPaperStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewPaperStoreWithPool(pool queryCloser) (*PaperStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PaperStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *PaperStore) Close() {
	s.pool.Close()
}

// ListApproved returns approved papers, newest first, capped at limit.
func (s *PaperStore) ListApproved(ctx context.Context, limit int) ([]sitemap.Paper, error) {
	query := `
		SELECT id, status, subject, course, college, created_at
		FROM papers
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, sitemap.StatusApproved, limit)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	var papers []sitemap.Paper
	for rows.Next() {
		var p sitemap.Paper
		var subject, course, college *string
		var createdAt *time.Time
		if err := rows.Scan(&p.ID, &p.Status, &subject, &course, &college, &createdAt); err != nil {
			return nil, fmt.Errorf("scan paper row: %w", err)
		}
		p.Subject = deref(subject)
		p.Course = deref(course)
		p.College = deref(college)
		if createdAt != nil {
			p.CreatedAt = *createdAt
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paper rows: %w", err)
	}
	return papers, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
