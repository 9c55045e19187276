package mcp

import (
	"go.uber.org/zap"

	"github.com/mark3labs/mcp-go/server"

	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/session"
)

const (
	serverName    = "veribuy"
	serverVersion = "1.0.0"
)

// Deps are the collaborators the tools operate on.
type Deps struct {
	// Session is shared by every tool call on the server.
	Session  *session.Session
	Searcher platform.Searcher
	// Pages is how many result pages search_products fetches by default.
	Pages  int
	Logger *zap.Logger
}

func newServer(d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, newToolset(d))
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(d Deps) error {
	return server.ServeStdio(newServer(d))
}
