// Package history generates a synthetic weekly price series for a product.
// The series has a realistic shape but carries no real market data.
package history

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	// Points is the number of weekly samples in a series.
	Points = 8
	// MinPrice is the floor applied to every simulated price.
	MinPrice = 4.0
	// MaxDrift bounds the weekly change in either direction.
	MaxDrift = 0.9

	stepDays = 7
)

// Notes label each week in order, wrapping if the series grows.
var Notes = []string{
	"Stable", "Small dip", "Small rise", "Promo week",
	"Low stock", "Weekend drop", "Restock", "Trending",
}

// Point is one week of simulated history.
type Point struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
	Note  string    `json:"note"`
}

// Label formats the date the way the history table shows it.
func (p Point) Label() string { return p.Date.Format("Jan 2") }

// Source supplies uniform values in [0, 1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Simulator produces history series from an injected random source and clock.
type Simulator struct {
	src Source
	now func() time.Time
}

// New creates a simulator. A nil src uses the auto-seeded global generator
// and a nil now uses time.Now.
func New(src Source, now func() time.Time) *Simulator {
	if src == nil {
		src = globalSource{}
	}
	if now == nil {
		now = time.Now
	}
	return &Simulator{src: src, now: now}
}

// NewSeeded creates a simulator whose output is fully determined by seed
// and the clock.
func NewSeeded(seed uint64, now func() time.Time) *Simulator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now)
}

// Generate walks from seven weeks ago up to today, starting at currentPrice
// and applying a bounded random drift each week. Points are oldest first.
func (s *Simulator) Generate(currentPrice float64) []Point {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]Point, 0, Points)
	p := currentPrice
	for step := 0; step < Points; step++ {
		weeksAgo := Points - 1 - step
		drift := (s.src.Float64() - 0.5) * 2 * MaxDrift
		p = math.Max(MinPrice, p+drift)
		out = append(out, Point{
			Date:  today.AddDate(0, 0, -stepDays*weeksAgo),
			Price: math.Round(p*100) / 100,
			Note:  Notes[step%len(Notes)],
		})
	}
	return out
}
