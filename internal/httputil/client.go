package httputil

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 8 << 20

// ErrBodyTooLarge is returned by ReadBody when the decoded body exceeds
// MaxBodyBytes.
var ErrBodyTooLarge = fmt.Errorf("response too large (over %d bytes)", MaxBodyBytes)

// NewHTTPClient creates an HTTP client with sensible defaults.
// An optional RoundTripper (e.g. a rate-limited transport) can be injected.
func NewHTTPClient(transport http.RoundTripper) *http.Client {
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// RetryBackoff is the base wait between attempts; attempt n waits n times it.
var RetryBackoff = 500 * time.Millisecond

// DoWithRetry performs an HTTP request, retrying transport errors and 5xx
// responses. The wait between attempts honours the request context.
// On retry, the request body is reset via req.GetBody if available.
func DoWithRetry(client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			if err := sleep(req, time.Duration(i)*RetryBackoff); err != nil {
				return nil, err
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("reset request body for retry: %w", err)
				}
				req.Body = body
			}
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && i < maxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func sleep(req *http.Request, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

// ReadBody reads and decompresses an HTTP response body, up to MaxBodyBytes.
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		reader = resp.Body
	}
	data, err := io.ReadAll(io.LimitReader(reader, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}
