package httputil

import "net/http"

// JSONHeaders returns headers for a JSON API request that accepts
// compressed responses.
func JSONHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, br")
	return h
}

// Apply copies h onto req without overwriting headers already set.
func Apply(req *http.Request, h http.Header) {
	for k, v := range h {
		if req.Header.Get(k) == "" {
			req.Header[k] = v
		}
	}
}
