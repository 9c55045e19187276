// Package pipeline turns a raw result list into the ranked, filtered view.
package pipeline

import (
	"cmp"
	"slices"

	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/ranking"
	"github.com/yf-2009/veribuy/internal/trust"
)

// Ranked is a product annotated for display.
type Ranked struct {
	models.Product
	Trust trust.Assessment `json:"trust"`
	Value float64          `json:"value"`
	Major bool             `json:"major"`
}

// Apply filters raw by cfg and orders the survivors. The input is not
// modified and identical inputs always give identical output.
func Apply(raw []models.Product, cfg models.FilterConfig) []Ranked {
	items := make([]Ranked, 0, len(raw))
	for _, p := range raw {
		if !Keep(p, cfg) {
			continue
		}
		a := trust.Score(p, cfg.Strict)
		items = append(items, Ranked{
			Product: p,
			Trust:   a,
			Value:   ranking.Value(p, a.Score),
			Major:   trust.IsMajorRetailer(p.Source),
		})
	}

	if cfg.PreferMajor {
		slices.SortStableFunc(items, func(a, b Ranked) int {
			return cmp.Compare(rank(b.Major), rank(a.Major))
		})
	}

	slices.SortStableFunc(items, comparator(cfg.SortBy))
	return items
}

// Keep reports whether p passes the price and rating limits. Unknown prices
// always pass; unknown ratings pass only when no minimum is set.
func Keep(p models.Product, cfg models.FilterConfig) bool {
	priceOK := p.Price == nil || *p.Price <= cfg.MaxPrice
	ratingOK := cfg.MinRating == 0
	if p.Rating != nil {
		ratingOK = *p.Rating >= cfg.MinRating
	}
	return priceOK && ratingOK
}

func comparator(by models.SortBy) func(a, b Ranked) int {
	switch by {
	case models.SortLowest:
		return func(a, b Ranked) int {
			return cmp.Compare(orDefault(a.Price, ranking.UnknownPrice), orDefault(b.Price, ranking.UnknownPrice))
		}
	case models.SortHighest:
		return func(a, b Ranked) int {
			return cmp.Compare(orDefault(b.Rating, 0), orDefault(a.Rating, 0))
		}
	case models.SortMostReviews:
		return func(a, b Ranked) int {
			return cmp.Compare(orDefault(b.Reviews, 0), orDefault(a.Reviews, 0))
		}
	default:
		return func(a, b Ranked) int {
			return cmp.Compare(b.Value, a.Value)
		}
	}
}

func orDefault[T int | float64](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func rank(major bool) int {
	if major {
		return 1
	}
	return 0
}
