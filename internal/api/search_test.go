package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/serpapi"
)

type fakeSearcher struct {
	products []models.Product
	err      error
	gotQuery string
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(_ context.Context, q string, _ platform.SearchOpts) ([]models.Product, error) {
	f.gotQuery = q
	return f.products, f.err
}

func TestSearchHandler(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		searcher   *fakeSearcher
		wantStatus int
		wantBody   string
		wantCache  bool
	}{
		{
			name:       "missing query",
			url:        "/api/search?q=%20",
			searcher:   &fakeSearcher{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Missing query parameter: q"}`,
		},
		{
			name:       "missing key",
			url:        "/api/search?q=lipstick",
			searcher:   &fakeSearcher{err: serpapi.ErrMissingAPIKey},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Missing SERPAPI_API_KEY env var.","fix":"Set SERPAPI_API_KEY in the environment or .env file, then restart."}`,
		},
		{
			name:       "upstream failure",
			url:        "/api/search?q=lipstick",
			searcher:   &fakeSearcher{err: &serpapi.UpstreamError{StatusCode: 429, Detail: "rate limited"}},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"SerpAPI request failed","detail":"rate limited"}`,
		},
		{
			name:       "other failure",
			url:        "/api/search?q=lipstick",
			searcher:   &fakeSearcher{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Server error","detail":"boom"}`,
		},
		{
			name:       "empty result set is an empty list",
			url:        "/api/search?q=nothing",
			searcher:   &fakeSearcher{},
			wantStatus: http.StatusOK,
			wantBody:   `{"items":[]}`,
			wantCache:  true,
		},
		{
			name: "results with unknown fields stay null",
			url:  "/api/search?q=lipstick",
			searcher: &fakeSearcher{products: []models.Product{
				{Title: "Lip", Source: models.String("Target"), Price: models.Float(7.5)},
			}},
			wantStatus: http.StatusOK,
			wantBody: `{"items":[{"title":"Lip","source":"Target","link":null,"thumbnail":null,"price":7.5,` +
				`"priceText":null,"rating":null,"reviews":null,"delivery":null}]}`,
			wantCache: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewSearchHandler(tt.searcher, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantCache {
				assert.Equal(t, cacheControl, rec.Header().Get("Cache-Control"))
			} else {
				assert.Empty(t, rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestSearchHandlerDroppedUpstreamHidesKey(t *testing.T) {
	const key = "SECRET-KEY-123"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	t.Cleanup(upstream.Close)

	client := serpapi.NewClient(upstream.Client(), serpapi.Options{APIKey: key, Endpoint: upstream.URL}, nil)
	rec := httptest.NewRecorder()
	NewSearchHandler(client, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=lipstick", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Server error"`)
	assert.NotContains(t, rec.Body.String(), key)
}

func TestSearchHandlerTrimsQuery(t *testing.T) {
	f := &fakeSearcher{}
	rec := httptest.NewRecorder()
	NewSearchHandler(f, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=+red+lipstick+", nil))
	assert.Equal(t, "red lipstick", f.gotQuery)
}
