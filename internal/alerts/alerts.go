// Package alerts keeps named snapshots of the filter settings.
package alerts

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yf-2009/veribuy/internal/models"
)

// ErrEmptyName is returned when an alert is created without a name.
var ErrEmptyName = errors.New("alert name is required")

// Store holds alerts, newest first.
type Store struct {
	mu     sync.Mutex
	alerts []models.Alert
	now    func() time.Time
	newID  func() string
}

// NewStore creates an empty store. now defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now, newID: uuid.NewString}
}

// Add records an alert for cfg's price, rating and strictness limits.
func (s *Store) Add(name string, cfg models.FilterConfig) (models.Alert, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Alert{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.Alert{
		ID:        s.newID(),
		Name:      name,
		MaxPrice:  cfg.MaxPrice,
		MinRating: cfg.MinRating,
		Strict:    cfg.Strict,
		CreatedAt: s.now(),
	}
	s.alerts = append([]models.Alert{a}, s.alerts...)
	return a, nil
}

// Remove deletes the alert with id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i:i], s.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the alerts, newest first.
func (s *Store) List() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}
