package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yf-2009/veribuy/internal/history"
	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/session"
)

type fakeSearcher struct {
	products []models.Product
	err      error
	pages    int
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(ctx context.Context, query string, opts platform.SearchOpts) ([]models.Product, error) {
	f.pages = 1
	return f.products, f.err
}

func (f *fakeSearcher) SearchAll(ctx context.Context, query string, pages int) ([]models.Product, error) {
	f.pages = pages
	return f.products, f.err
}

func fixtures() []models.Product {
	return []models.Product{
		{Title: "Matte Lipstick", Source: models.String("Target"), Price: models.Float(10), Rating: models.Float(4.6), Reviews: models.Int(1200)},
		{Title: "Gloss", Source: models.String("someshop"), Price: models.Float(30), Rating: models.Float(3.9), Reviews: models.Int(4)},
		{Title: "Balm", Source: models.String("Ulta Beauty"), Rating: models.Float(4.2), Reviews: models.Int(80)},
	}
}

func newTestToolset(s *fakeSearcher) *toolset {
	now := func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }
	sess := session.New(session.Options{History: history.NewSeeded(7, now)})
	return newToolset(Deps{Session: sess, Searcher: s, Pages: 1})
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &v))
	return v
}

type viewPayload struct {
	Count int `json:"count"`
	Total int `json:"total"`
	Items []struct {
		Index           int      `json:"index"`
		Title           string   `json:"title"`
		DiscountedPrice *float64 `json:"discountedPrice"`
		Major           bool     `json:"major"`
	} `json:"items"`
}

func TestSearchRequiresQuery(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{})
	res, err := ts.handleSearch(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "query is required")
}

func TestSearchFiltersAndRanks(t *testing.T) {
	fs := &fakeSearcher{products: fixtures()}
	ts := newTestToolset(fs)

	res, err := ts.handleSearch(context.Background(), call(map[string]any{
		"query":     "lipstick",
		"max_price": "20",
		"sort_by":   "lowest",
		"pages":     3,
	}))
	require.NoError(t, err)

	got := decode[viewPayload](t, res)
	assert.Equal(t, 3, fs.pages)
	assert.Equal(t, 3, got.Total)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "Matte Lipstick", got.Items[0].Title)
	assert.Equal(t, "Balm", got.Items[1].Title)
	assert.Equal(t, 1, got.Items[1].Index)
	assert.True(t, got.Items[0].Major)
}

func TestSearchUpstreamError(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{err: errors.New("boom")})
	res, err := ts.handleSearch(context.Background(), call(map[string]any{"query": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "boom")
}

func TestApplyFiltersReusesResults(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{products: fixtures()})
	_, err := ts.handleSearch(context.Background(), call(map[string]any{"query": "x"}))
	require.NoError(t, err)

	res, err := ts.handleApplyFilters(context.Background(), call(map[string]any{"min_rating": "4.5"}))
	require.NoError(t, err)
	got := decode[viewPayload](t, res)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "Matte Lipstick", got.Items[0].Title)
}

func TestApplyCoupon(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{products: fixtures()})
	_, err := ts.handleSearch(context.Background(), call(map[string]any{"query": "x", "sort_by": "lowest"}))
	require.NoError(t, err)

	res, err := ts.handleApplyCoupon(context.Background(), call(map[string]any{"code": " veribuy5 "}))
	require.NoError(t, err)
	got := decode[struct {
		Coupon *models.Coupon `json:"coupon"`
		Items  []struct {
			DiscountedPrice *float64 `json:"discountedPrice"`
		} `json:"items"`
	}](t, res)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "VERIBUY5", got.Coupon.Code)
	require.NotEmpty(t, got.Items)
	require.NotNil(t, got.Items[0].DiscountedPrice)
	assert.InDelta(t, 9.25, *got.Items[0].DiscountedPrice, 1e-9)

	res, err = ts.handleApplyCoupon(context.Background(), call(map[string]any{"code": ""}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"status": "cleared"`)
}

func TestWishlistTools(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{products: fixtures()})
	_, err := ts.handleSearch(context.Background(), call(map[string]any{"query": "x"}))
	require.NoError(t, err)

	res, err := ts.handleSaveItem(context.Background(), call(map[string]any{"index": 0}))
	require.NoError(t, err)
	saved := decode[struct {
		Added bool `json:"added"`
		Entry struct {
			Key string `json:"key"`
		} `json:"entry"`
	}](t, res)
	assert.True(t, saved.Added)
	require.NotEmpty(t, saved.Entry.Key)

	res, err = ts.handleSaveItem(context.Background(), call(map[string]any{"index": 0}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"added": false`)

	res, err = ts.handleSaveItem(context.Background(), call(map[string]any{"index": 99}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = ts.handleRemoveSaved(context.Background(), call(map[string]any{"key": saved.Entry.Key}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"removed": true`)

	res, err = ts.handleListSaved(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", text(t, res))
}

func TestAlertTools(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{})

	res, err := ts.handleSaveAlert(context.Background(), call(map[string]any{"name": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = ts.handleSaveAlert(context.Background(), call(map[string]any{"name": "cheap"}))
	require.NoError(t, err)
	a := decode[models.Alert](t, res)
	assert.Equal(t, "cheap", a.Name)
	assert.NotEmpty(t, a.ID)

	res, err = ts.handleListAlerts(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Len(t, decode[[]models.Alert](t, res), 1)

	res, err = ts.handleRemoveAlert(context.Background(), call(map[string]any{"id": a.ID}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"removed": true`)
}

func TestPriceHistoryTool(t *testing.T) {
	ts := newTestToolset(&fakeSearcher{products: fixtures()})
	_, err := ts.handleSearch(context.Background(), call(map[string]any{"query": "x"}))
	require.NoError(t, err)

	res, err := ts.handleHistory(context.Background(), call(map[string]any{"index": 0}))
	require.NoError(t, err)
	got := decode[struct {
		Simulated bool `json:"simulated"`
		Points    []struct {
			Date  string  `json:"date"`
			Price float64 `json:"price"`
		} `json:"points"`
	}](t, res)
	assert.True(t, got.Simulated)
	require.Len(t, got.Points, history.Points)
	assert.Equal(t, "2026-03-01", got.Points[len(got.Points)-1].Date)
	for _, p := range got.Points {
		assert.GreaterOrEqual(t, p.Price, history.MinPrice)
	}
}

func TestHTTPHandlerRoutes(t *testing.T) {
	h := NewHTTPHandler("secret", Deps{Searcher: &fakeSearcher{products: fixtures()}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=lipstick", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Matte Lipstick")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToolsShareOneSession(t *testing.T) {
	sess := session.New(session.Options{})
	first := newToolset(Deps{Session: sess, Searcher: &fakeSearcher{products: fixtures()}})
	second := newToolset(Deps{Session: sess})

	_, err := first.handleSearch(context.Background(), call(map[string]any{"query": "x"}))
	require.NoError(t, err)
	_, err = first.handleApplyCoupon(context.Background(), call(map[string]any{"code": "WELCOME"}))
	require.NoError(t, err)

	res, err := second.handleApplyFilters(context.Background(), call(nil))
	require.NoError(t, err)
	got := decode[struct {
		Total  int            `json:"total"`
		Coupon *models.Coupon `json:"coupon"`
	}](t, res)
	assert.Equal(t, 3, got.Total)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "WELCOME", got.Coupon.Code)
}

