package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/internal/api"
)

// NewHTTPHandler returns the HTTP routes: /healthz, /api/search and the MCP
// endpoint at /mcp, the latter behind bearer auth when apiKey is set.
//
// The MCP endpoint is stateless and serves a single shopper: every client
// drives the same d.Session, so filters, coupon, wishlist and alerts set by
// one caller are seen by all. Run one server per shopper.
func NewHTTPHandler(apiKey string, d Deps) http.Handler {
	httpServer := server.NewStreamableHTTPServer(newServer(d), server.WithStateLess(true))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /api/search", api.NewSearchHandler(d.Searcher, d.Logger))

	var mcpHandler http.Handler = httpServer
	if apiKey != "" {
		mcpHandler = bearerAuth(apiKey, httpServer)
	}
	mux.Handle("/mcp", mcpHandler)
	return mux
}

// ServeHTTP starts the MCP server over HTTP with optional Bearer token auth.
func ServeHTTP(addr, apiKey string, d Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      NewHTTPHandler(apiKey, d),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("veribuy HTTP server listening", zap.String("addr", addr), zap.Bool("auth", apiKey != ""))
	return srv.ListenAndServe()
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
