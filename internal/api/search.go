// Package api serves the JSON search endpoint consumed by browser clients.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/serpapi"
)

const cacheControl = "s-maxage=60, stale-while-revalidate=300"

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type searchBody struct {
	Items []models.Product `json:"items"`
}

// SearchHandler answers GET /api/search?q=... with {"items": [...]}.
type SearchHandler struct {
	searcher platform.Searcher
	logger   *zap.Logger
}

// NewSearchHandler wires a handler to searcher.
func NewSearchHandler(searcher platform.Searcher, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{searcher: searcher, logger: logger}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing query parameter: q"})
		return
	}

	items, err := h.searcher.Search(r.Context(), q, platform.SearchOpts{})
	if err != nil {
		h.writeError(w, q, err)
		return
	}
	if items == nil {
		items = []models.Product{}
	}

	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, searchBody{Items: items})
}

func (h *SearchHandler) writeError(w http.ResponseWriter, q string, err error) {
	var upstream *serpapi.UpstreamError
	switch {
	case errors.Is(err, serpapi.ErrMissingAPIKey):
		h.logger.Error("search provider not configured")
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: "Missing SERPAPI_API_KEY env var.",
			Fix:   "Set SERPAPI_API_KEY in the environment or .env file, then restart.",
		})
	case errors.Is(err, serpapi.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing query parameter: q"})
	case errors.As(err, &upstream):
		h.logger.Warn("search upstream failed", zap.String("query", q), zap.Int("status", upstream.StatusCode))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "SerpAPI request failed", Detail: upstream.Detail})
	default:
		h.logger.Error("search failed", zap.String("query", q), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Server error", Detail: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
