// Package serpapi fetches Google Shopping results through SerpAPI.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yf-2009/veribuy/internal/httputil"
	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/platform"
)

const (
	// Name is the registry name of this provider.
	Name = "serpapi"

	DefaultEndpoint = "https://serpapi.com/search.json"
	// MaxResults is the most items kept from one page.
	MaxResults = 40

	maxDetail = 600
)

var (
	// ErrMissingAPIKey means no SerpAPI key was configured.
	ErrMissingAPIKey = errors.New("missing SERPAPI_API_KEY")
	// ErrEmptyQuery means the query was blank after trimming.
	ErrEmptyQuery = errors.New("missing query")
)

// UpstreamError reports a non-success response from SerpAPI.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("serpapi request failed: status %d: %s", e.StatusCode, e.Detail)
}

// Options configures a Client.
type Options struct {
	APIKey        string
	Endpoint      string
	Language      string
	Country       string
	Num           int
	MaxConcurrent int
	MaxRetries    int
}

// Client implements platform.Searcher for SerpAPI's google_shopping engine.
type Client struct {
	client *http.Client
	opts   Options
	logger *zap.Logger
}

var _ platform.Searcher = (*Client)(nil)

// NewClient creates a client. A nil logger disables logging.
func NewClient(client *http.Client, opts Options, logger *zap.Logger) *Client {
	if client == nil {
		client = httputil.NewHTTPClient(nil)
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Country == "" {
		opts.Country = "us"
	}
	if opts.Num <= 0 || opts.Num > MaxResults {
		opts.Num = MaxResults
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{client: client, opts: opts, logger: logger}
}

func (c *Client) Name() string { return Name }

// Search fetches one page of results for query.
func (c *Client) Search(ctx context.Context, query string, opts platform.SearchOpts) ([]models.Product, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if c.opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	limit := opts.Limit
	if limit <= 0 || limit > c.opts.Num {
		limit = c.opts.Num
	}
	page := max(opts.Page, 1)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(q, page), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httputil.Apply(httpReq, httputil.JSONHeaders())

	c.logger.Debug("serpapi search", zap.String("query", q), zap.Int("page", page))
	resp, err := httputil.DoWithRetry(c.client, httpReq, c.opts.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("serpapi: %w", c.redactKey(err))
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read serpapi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("serpapi upstream error", zap.Int("status", resp.StatusCode), zap.String("query", q))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Detail: truncate(string(body), maxDetail)}
	}

	products, err := parseResponse(body, limit)
	if err != nil {
		return nil, err
	}
	platform.ReportProgress(ctx, fmt.Sprintf("Page %d: %d results", page, len(products)))
	return products, nil
}

// SearchAll fetches pages 1..pages concurrently and concatenates them in
// page order.
func (c *Client) SearchAll(ctx context.Context, query string, pages int) ([]models.Product, error) {
	pages = max(pages, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrent)

	results := make([][]models.Product, pages)
	for i := 0; i < pages; i++ {
		g.Go(func() error {
			products, err := c.Search(ctx, query, platform.SearchOpts{Page: i + 1})
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			results[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flatten(results), nil
}

func (c *Client) searchURL(q string, page int) string {
	v := url.Values{}
	v.Set("engine", "google_shopping")
	v.Set("q", q)
	v.Set("hl", c.opts.Language)
	v.Set("gl", c.opts.Country)
	v.Set("num", strconv.Itoa(c.opts.Num))
	if page > 1 {
		v.Set("start", strconv.Itoa((page-1)*c.opts.Num))
	}
	v.Set("api_key", c.opts.APIKey)
	return c.opts.Endpoint + "?" + v.Encode()
}

// redactedError hides the API key in the text of a wrapped error.
type redactedError struct {
	err     error
	secrets []string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	for _, s := range e.secrets {
		msg = strings.ReplaceAll(msg, s, "REDACTED")
	}
	return msg
}

func (e *redactedError) Unwrap() error { return e.err }

// redactKey scrubs the API key from transport errors, whose text embeds
// the request URL. Any *url.Error in the chain has its URL rewritten.
func (c *Client) redactKey(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactURL(ue.URL)
	}
	secrets := []string{c.opts.APIKey}
	if esc := url.QueryEscape(c.opts.APIKey); esc != c.opts.APIKey {
		secrets = append(secrets, esc)
	}
	return &redactedError{err: err, secrets: secrets}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// searchResponse is the subset of the SerpAPI payload we read. Numeric
// fields are decoded loosely because the API mixes strings and numbers.
type searchResponse struct {
	ShoppingResults []shoppingItem `json:"shopping_results"`
}

type shoppingItem struct {
	Title          any `json:"title"`
	Source         any `json:"source"`
	Link           any `json:"link"`
	ProductLink    any `json:"product_link"`
	Thumbnail      any `json:"thumbnail"`
	Price          any `json:"price"`
	ExtractedPrice any `json:"extracted_price"`
	Rating         any `json:"rating"`
	Reviews        any `json:"reviews"`
	Delivery       any `json:"delivery"`
}

func parseResponse(data []byte, limit int) ([]models.Product, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal serpapi response: %w", err)
	}

	items := resp.ShoppingResults
	if len(items) > limit {
		items = items[:limit]
	}

	products := make([]models.Product, 0, len(items))
	for _, it := range items {
		title := "Untitled"
		if s := str(it.Title); s != nil {
			title = *s
		}
		link := str(it.Link)
		if link == nil {
			link = str(it.ProductLink)
		}
		p := models.Product{
			Title:     title,
			Source:    str(it.Source),
			Link:      link,
			Thumbnail: str(it.Thumbnail),
			Price:     num(it.ExtractedPrice),
			PriceText: str(it.Price),
			Rating:    num(it.Rating),
			Delivery:  str(it.Delivery),
		}
		if n := num(it.Reviews); n != nil {
			p.Reviews = models.Int(int(math.Round(*n)))
		}
		products = append(products, p)
	}
	return products, nil
}

// str keeps non-empty strings only.
func str(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// num keeps JSON numbers only; numeric-looking strings stay unknown.
func num(v any) *float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func flatten(results [][]models.Product) []models.Product {
	var out []models.Product
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
