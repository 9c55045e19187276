// Package platform defines the search-provider contract and a registry of
// named providers.
package platform

import (
	"context"
	"fmt"

	"github.com/yf-2009/veribuy/internal/models"
)

// SearchOpts selects a page of results.
type SearchOpts struct {
	Page  int
	Limit int
}

// Searcher fetches raw shopping results for a free-text query.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, opts SearchOpts) ([]models.Product, error)
}

// PagedSearcher is implemented by providers that can fetch several pages
// in one call.
type PagedSearcher interface {
	SearchAll(ctx context.Context, query string, pages int) ([]models.Product, error)
}

// SearchPages fetches pages 1..pages from s and concatenates them in page
// order, delegating to SearchAll when s supports it.
func SearchPages(ctx context.Context, s Searcher, query string, pages int) ([]models.Product, error) {
	pages = max(pages, 1)
	if ps, ok := s.(PagedSearcher); ok {
		return ps.SearchAll(ctx, query, pages)
	}
	var out []models.Product
	for page := 1; page <= pages; page++ {
		products, err := s.Search(ctx, query, SearchOpts{Page: page})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		out = append(out, products...)
	}
	return out, nil
}

// ProgressFunc receives human-readable status updates.
type ProgressFunc func(msg string)

type progressKey struct{}

// WithProgress attaches fn to ctx for long-running searches to report through.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress forwards msg to the callback in ctx. It is a no-op when
// none is attached, as in MCP mode.
func ReportProgress(ctx context.Context, msg string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(msg)
	}
}
