// Package session owns the mutable shopping state and composes the
// scoring, filtering and collection components over it.
package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/internal/alerts"
	"github.com/yf-2009/veribuy/internal/coupon"
	"github.com/yf-2009/veribuy/internal/history"
	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/pipeline"
	"github.com/yf-2009/veribuy/internal/wishlist"
)

// CompareLimit caps the number of rows in the comparison table.
const CompareLimit = 8

// FallbackHistoryPrice seeds history for products without a price.
const FallbackHistoryPrice = 18.0

// ErrIndexOutOfRange is returned when an index does not address the current view.
var ErrIndexOutOfRange = errors.New("index out of range")

// CompareRow is one line of the side-by-side comparison.
type CompareRow struct {
	Source       string   `json:"source"`
	Price        *float64 `json:"price"`
	TrustLabel   string   `json:"trustLabel"`
	Score        int      `json:"score"`
	CouponStatus string   `json:"couponStatus"`
}

// Session is the state of one shopper. All methods are safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	raw    []models.Product
	filter models.FilterConfig
	coupon *models.Coupon

	coupons  *coupon.Engine
	history  *history.Simulator
	wishlist *wishlist.Store
	alerts   *alerts.Store
	logger   *zap.Logger
}

// Options configures a Session. Zero values select production defaults.
type Options struct {
	Coupons  *coupon.Engine
	History  *history.Simulator
	Wishlist *wishlist.Store
	Alerts   *alerts.Store
	Logger   *zap.Logger
}

// New creates a session with an empty result set and permissive filters.
func New(opts Options) *Session {
	s := &Session{
		filter:   models.DefaultFilterConfig(),
		coupons:  opts.Coupons,
		history:  opts.History,
		wishlist: opts.Wishlist,
		alerts:   opts.Alerts,
		logger:   opts.Logger,
	}
	if s.coupons == nil {
		s.coupons = coupon.NewEngine(nil)
	}
	if s.history == nil {
		s.history = history.New(nil, nil)
	}
	if s.wishlist == nil {
		s.wishlist = wishlist.NewStore(nil)
	}
	if s.alerts == nil {
		s.alerts = alerts.NewStore(nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Replace swaps in a new raw result set. The previous set is discarded.
func (s *Session) Replace(products []models.Product) {
	raw := make([]models.Product, len(products))
	copy(raw, products)

	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
	s.logger.Debug("results replaced", zap.Int("count", len(raw)))
}

// Raw returns a copy of the current raw results.
func (s *Session) Raw() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.raw))
	copy(out, s.raw)
	return out
}

// SetFilter replaces the active filter configuration.
func (s *Session) SetFilter(cfg models.FilterConfig) {
	s.mu.Lock()
	s.filter = cfg
	s.mu.Unlock()
	s.logger.Debug("filter updated",
		zap.Float64("max_price", cfg.MaxPrice),
		zap.Float64("min_rating", cfg.MinRating),
		zap.String("sort_by", string(cfg.SortBy)),
		zap.Bool("strict", cfg.Strict),
		zap.Bool("prefer_major", cfg.PreferMajor))
}

// Filter returns the active filter configuration.
func (s *Session) Filter() models.FilterConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// View computes the ranked, filtered results from the current state.
func (s *Session) View() []pipeline.Ranked {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pipeline.Apply(s.raw, s.filter)
}

// ApplyCoupon resolves code and makes it the active coupon. A blank code
// clears it.
func (s *Session) ApplyCoupon(code string) *models.Coupon {
	c := s.coupons.Apply(code)

	s.mu.Lock()
	s.coupon = c
	s.mu.Unlock()

	if c == nil {
		s.logger.Debug("coupon cleared")
	} else {
		s.logger.Debug("coupon applied",
			zap.String("code", c.Code),
			zap.Bool("found", c.Found),
			zap.Bool("verified", c.Verified))
	}
	return c
}

// Coupon returns the active coupon, or nil.
func (s *Session) Coupon() *models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return nil
	}
	c := *s.coupon
	return &c
}

// Discounted returns p's price after the active coupon, if one applies.
func (s *Session) Discounted(p models.Product) (float64, bool) {
	return coupon.DiscountedPrice(p, s.Coupon())
}

// Snapshot is a consistent copy of the session state taken under one lock.
type Snapshot struct {
	Items  []pipeline.Ranked
	Total  int
	Filter models.FilterConfig
	Coupon *models.Coupon
}

// Snapshot computes the ranked view together with the state it came from.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Items:  pipeline.Apply(s.raw, s.filter),
		Total:  len(s.raw),
		Filter: s.filter,
	}
	if s.coupon != nil {
		c := *s.coupon
		snap.Coupon = &c
	}
	return snap
}

// Discounted returns p's price after the snapshot's coupon, if one applies.
func (sn Snapshot) Discounted(p models.Product) (float64, bool) {
	return coupon.DiscountedPrice(p, sn.Coupon)
}

// Compare builds comparison rows for the top of the snapshot's view.
func (sn Snapshot) Compare() []CompareRow {
	status := coupon.Status(sn.Coupon)

	n := min(len(sn.Items), CompareLimit)
	rows := make([]CompareRow, 0, n)
	for _, it := range sn.Items[:n] {
		rows = append(rows, CompareRow{
			Source:       it.SourceName(),
			Price:        it.Price,
			TrustLabel:   it.Trust.Tone.Label(),
			Score:        it.Trust.Score,
			CouponStatus: status,
		})
	}
	return rows
}

// Compare builds comparison rows for the top of the current view.
func (s *Session) Compare() []CompareRow {
	return s.Snapshot().Compare()
}

func (s *Session) at(index int) (pipeline.Ranked, error) {
	view := s.View()
	if index < 0 || index >= len(view) {
		return pipeline.Ranked{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, len(view))
	}
	return view[index], nil
}

// Save adds the view item at index to the wishlist. added is false when it
// was already saved.
func (s *Session) Save(index int) (entry wishlist.Entry, added bool, err error) {
	it, err := s.at(index)
	if err != nil {
		return wishlist.Entry{}, false, err
	}
	entry, added = s.wishlist.Add(it.Product)
	s.logger.Debug("wishlist save", zap.String("title", it.Title), zap.Bool("added", added))
	return entry, added, nil
}

// Unsave removes a wishlist entry by key.
func (s *Session) Unsave(k wishlist.Key) bool {
	removed := s.wishlist.Remove(k)
	s.logger.Debug("wishlist remove", zap.String("key", k.String()), zap.Bool("removed", removed))
	return removed
}

// Wishlist returns saved entries, newest first.
func (s *Session) Wishlist() []wishlist.Entry {
	return s.wishlist.List()
}

// SaveAlert snapshots the active filter under name.
func (s *Session) SaveAlert(name string) (models.Alert, error) {
	a, err := s.alerts.Add(name, s.Filter())
	if err != nil {
		return models.Alert{}, err
	}
	s.logger.Debug("alert saved", zap.String("id", a.ID), zap.String("name", a.Name))
	return a, nil
}

// RemoveAlert deletes an alert by id.
func (s *Session) RemoveAlert(id string) bool {
	removed := s.alerts.Remove(id)
	s.logger.Debug("alert remove", zap.String("id", id), zap.Bool("removed", removed))
	return removed
}

// Alerts returns saved alerts, newest first.
func (s *Session) Alerts() []models.Alert {
	return s.alerts.List()
}

// History simulates the price history of the view item at index.
func (s *Session) History(index int) (models.Product, []history.Point, error) {
	it, err := s.at(index)
	if err != nil {
		return models.Product{}, nil, err
	}
	return it.Product, s.HistoryFor(it.Product), nil
}

// HistoryFor simulates the price history of p.
func (s *Session) HistoryFor(p models.Product) []history.Point {
	price := FallbackHistoryPrice
	if p.Price != nil {
		price = *p.Price
	}
	// Seeded sources are not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Generate(price)
}
