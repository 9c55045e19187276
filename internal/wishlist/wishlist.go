// Package wishlist keeps the user's saved products for the session.
package wishlist

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/yf-2009/veribuy/internal/models"
)

// Key identifies a saved product by title, source and price. Nil source and
// nil price are distinct from empty string and zero.
type Key struct {
	Title     string
	Source    string
	HasSource bool
	Price     float64
	HasPrice  bool
}

type wireKey struct {
	Title  string   `json:"t"`
	Source *string  `json:"s"`
	Price  *float64 `json:"p"`
}

// KeyOf derives the dedupe key for p.
func KeyOf(p models.Product) Key {
	k := Key{Title: p.Title}
	if p.Source != nil {
		k.Source, k.HasSource = *p.Source, true
	}
	if p.Price != nil {
		k.Price, k.HasPrice = *p.Price, true
	}
	return k
}

// String encodes the key so it can round-trip through ParseKey. Field
// contents are escaped, so no two keys share an encoding.
func (k Key) String() string {
	w := wireKey{Title: k.Title}
	if k.HasSource {
		w.Source = &k.Source
	}
	if k.HasPrice {
		w.Price = &k.Price
	}
	data, _ := json.Marshal(w)
	return string(data)
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKey decodes a key produced by Key.String.
func ParseKey(s string) (Key, error) {
	var w wireKey
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return Key{}, fmt.Errorf("parse wishlist key: %w", err)
	}
	k := Key{Title: w.Title}
	if w.Source != nil {
		k.Source, k.HasSource = *w.Source, true
	}
	if w.Price != nil {
		k.Price, k.HasPrice = *w.Price, true
	}
	return k, nil
}

// Entry is a saved product.
type Entry struct {
	models.Product
	Key     Key       `json:"key"`
	SavedAt time.Time `json:"savedAt"`
}

// Store is an ordered, deduplicated set of entries, newest first.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewStore creates an empty store. now defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Add saves p unless an entry with the same key exists. It returns the
// stored entry and whether it was newly added.
func (s *Store) Add(p models.Product) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := KeyOf(p)
	for _, e := range s.entries {
		if e.Key == k {
			return e, false
		}
	}
	e := Entry{Product: p, Key: k, SavedAt: s.now()}
	s.entries = append([]Entry{e}, s.entries...)
	return e, true
}

// Remove deletes the entry with key k and reports whether one existed.
func (s *Store) Remove(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Key == k {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the entries, most recently saved first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of saved entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
