// Package transport provides the outbound RoundTripper used for provider calls.
package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies this client to upstream APIs.
const DefaultUserAgent = "veribuy/1.0 (+https://github.com/yf-2009/veribuy)"

// Transport is an http.RoundTripper that applies the outbound pipeline:
// UserAgent → RateLimiter → Base
type Transport struct {
	Base        http.RoundTripper
	RateLimiter *rate.Limiter
	UserAgent   string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	// 1. Identify ourselves unless the caller already did
	if req.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		req.Header.Set("User-Agent", ua)
	}

	// 2. Wait for rate limiter token
	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewBase builds the underlying transport, routed through proxyURL when it
// is non-empty. HTTP, HTTPS and SOCKS5 proxy URLs are accepted.
func NewBase(proxyURL string) (*http.Transport, error) {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxyURL == "" {
		return base, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	base.Proxy = http.ProxyURL(u)
	return base, nil
}

// New assembles a rate-limited transport from plain settings.
func New(proxyURL string, perSecond float64, burst int) (*Transport, error) {
	base, err := NewBase(proxyURL)
	if err != nil {
		return nil, err
	}
	var limiter *rate.Limiter
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
	return &Transport{Base: base, RateLimiter: limiter, UserAgent: DefaultUserAgent}, nil
}
