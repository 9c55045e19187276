package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Product is one shopping result as delivered by the search provider.
// Unknown fields are nil; numeric fields are never defaulted to zero.
type Product struct {
	Title     string   `json:"title"`
	Source    *string  `json:"source"`
	Link      *string  `json:"link"`
	Thumbnail *string  `json:"thumbnail"`
	Price     *float64 `json:"price"`
	PriceText *string  `json:"priceText"`
	Rating    *float64 `json:"rating"`
	Reviews   *int     `json:"reviews"`
	Delivery  *string  `json:"delivery"`
}

// SourceName returns the seller name or "Unknown".
func (p Product) SourceName() string {
	if p.Source == nil || *p.Source == "" {
		return "Unknown"
	}
	return *p.Source
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// SortBy selects the primary ordering of the filtered view.
type SortBy string

const (
	SortBestValue   SortBy = "bestValue"
	SortLowest      SortBy = "lowest"
	SortHighest     SortBy = "highest"
	SortMostReviews SortBy = "mostReviews"
)

// ParseSortBy maps user input to a SortBy, falling back to best value.
func ParseSortBy(s string) SortBy {
	switch SortBy(strings.TrimSpace(s)) {
	case SortLowest:
		return SortLowest
	case SortHighest:
		return SortHighest
	case SortMostReviews:
		return SortMostReviews
	default:
		return SortBestValue
	}
}

// DefaultMaxPrice stands in for "no price ceiling".
const DefaultMaxPrice = 999999

// FilterConfig is the user's filter and sort selection.
type FilterConfig struct {
	MaxPrice    float64 `json:"maxPrice"`
	MinRating   float64 `json:"minRating"`
	SortBy      SortBy  `json:"sortBy"`
	Strict      bool    `json:"strict"`
	PreferMajor bool    `json:"preferMajor"`
}

// DefaultFilterConfig returns the permissive configuration.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxPrice:  DefaultMaxPrice,
		MinRating: 0,
		SortBy:    SortBestValue,
	}
}

// ParseFilterConfig builds a FilterConfig from raw form values. Blank or
// non-numeric limits fall back to the permissive defaults instead of failing.
func ParseFilterConfig(maxPrice, minRating, sortBy string, strict, preferMajor bool) FilterConfig {
	cfg := DefaultFilterConfig()
	if v, ok := parseNumber(maxPrice); ok {
		cfg.MaxPrice = v
	}
	if v, ok := parseNumber(minRating); ok {
		cfg.MinRating = v
	}
	cfg.SortBy = ParseSortBy(sortBy)
	cfg.Strict = strict
	cfg.PreferMajor = preferMajor
	return cfg
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Coupon is the single active discount code.
type Coupon struct {
	Code     string  `json:"code"`
	Amount   float64 `json:"amount"`
	Verified bool    `json:"verified"`
	// Found is false when the code is not in the rule table.
	Found   bool   `json:"found"`
	Message string `json:"message,omitempty"`
}

// Alert is a named snapshot of filter settings.
type Alert struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MaxPrice  float64   `json:"maxPrice"`
	MinRating float64   `json:"minRating"`
	Strict    bool      `json:"strict"`
	CreatedAt time.Time `json:"createdAt"`
}
