package alerts

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yf-2009/veribuy/internal/models"
)

func TestAddSnapshotsConfig(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s := NewStore(func() time.Time { return now })

	cfg := models.FilterConfig{MaxPrice: 15, MinRating: 4, SortBy: models.SortLowest, Strict: true}
	a, err := s.Add("  cheap lipstick ", cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "cheap lipstick", a.Name)
	assert.Equal(t, 15.0, a.MaxPrice)
	assert.Equal(t, 4.0, a.MinRating)
	assert.True(t, a.Strict)
	assert.Equal(t, now, a.CreatedAt)
	assert.Equal(t, []models.Alert{a}, s.List())
}

func TestAddRejectsBlankName(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Add("   ", models.DefaultFilterConfig())
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Empty(t, s.List())
}

func TestNewestFirstAndRemove(t *testing.T) {
	s := NewStore(nil)
	first, err := s.Add("first", models.DefaultFilterConfig())
	require.NoError(t, err)
	second, err := s.Add("second", models.DefaultFilterConfig())
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	assert.True(t, s.Remove(first.ID))
	assert.False(t, s.Remove(first.ID))
	assert.False(t, s.Remove("missing"))
	assert.Equal(t, []models.Alert{second}, s.List())
}

func TestIDsUnique(t *testing.T) {
	s := NewStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = s.Add("burst", models.DefaultFilterConfig())
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, a := range s.List() {
		require.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
	assert.Len(t, seen, 800)
}
