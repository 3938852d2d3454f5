package sitemap

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Clock supplies build timestamps so tests can pin them.
type Clock interface {
	Now() time.Time
}

// PaperReader is the slice of the paper store the builder needs.
type PaperReader interface {
	ListApproved(ctx context.Context, limit int) ([]Paper, error)
}

// Builder assembles sitemap documents. Static routes are emitted verbatim;
// dynamic routes derive from the approved papers page. A failing store query
// degrades to a static-only document, never an error.
type Builder struct {
	baseURL  string
	static   []RouteEntry
	papers   PaperReader
	pageSize int
	clock    Clock
	logger   *zap.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(
	baseURL string,
	static []RouteEntry,
	papers PaperReader,
	pageSize int,
	clock Clock,
	logger *zap.Logger,
) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Builder{
		baseURL:  baseURL,
		static:   static,
		papers:   papers,
		pageSize: pageSize,
		clock:    clock,
		logger:   logger,
	}
}

// Build assembles a fresh document: static routes, then one route per
// approved paper, then one route per distinct subject, course, and college
// value. Paths are de-duplicated, first occurrence wins. The second return
// reports degraded (static-only) output after a failed store query.
func (b *Builder) Build(ctx context.Context) (Document, bool) {
	now := b.clock.Now()
	entries := make([]RouteEntry, 0, len(b.static)+b.pageSize)
	for _, r := range b.static {
		e := r
		if e.LastModified.IsZero() {
			e.LastModified = now
		}
		entries = append(entries, e)
	}

	papers, err := b.fetchPapers(ctx)
	if err != nil {
		b.logger.Warn("paper query failed, serving static-only sitemap", zap.Error(err))
		return Document{BaseURL: b.baseURL, Entries: dedupe(entries)}, true
	}

	for _, p := range papers {
		if p.ID == "" {
			continue
		}
		lastMod := p.CreatedAt
		if lastMod.IsZero() {
			lastMod = now
		}
		entries = append(entries, RouteEntry{
			Path:         "/browse?" + encodeQuery("paper", p.ID),
			LastModified: lastMod,
			ChangeFreq:   FreqWeekly,
			Priority:     0.8,
		})
	}

	entries = append(entries, facetRoutes(papers, now, func(p Paper) string { return p.Subject },
		"subject", FreqDaily, 0.7)...)
	entries = append(entries, facetRoutes(papers, now, func(p Paper) string { return p.Course },
		"course", FreqDaily, 0.7)...)
	entries = append(entries, facetRoutes(papers, now, func(p Paper) string { return p.College },
		"college", FreqWeekly, 0.6)...)

	return Document{BaseURL: b.baseURL, Entries: dedupe(entries)}, false
}

func (b *Builder) fetchPapers(ctx context.Context) ([]Paper, error) {
	papers, err := b.papers.ListApproved(ctx, b.pageSize)
	if err != nil {
		return nil, err
	}
	// Defensive filter; stores are expected to return approved rows only.
	out := papers[:0]
	for _, p := range papers {
		if p.Approved() {
			out = append(out, p)
		}
	}
	return out, nil
}

// facetRoutes emits one route per distinct non-empty facet value, in first
// occurrence order over the papers page.
func facetRoutes(papers []Paper, now time.Time, value func(Paper) string,
	param string, freq ChangeFreq, priority float64) []RouteEntry {
	seen := make(map[string]struct{})
	var routes []RouteEntry
	for _, p := range papers {
		v := value(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		routes = append(routes, RouteEntry{
			Path:         "/browse?" + encodeQuery(param, v),
			LastModified: now,
			ChangeFreq:   freq,
			Priority:     priority,
		})
	}
	return routes
}

func encodeQuery(key, value string) string {
	return url.Values{key: {value}}.Encode()
}

func dedupe(entries []RouteEntry) []RouteEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.Path]; ok {
			continue
		}
		seen[e.Path] = struct{}{}
		out = append(out, e)
	}
	return out
}
