package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/yf-2009/veribuy/mcp"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start MCP HTTP server",
	Long:  "Start the MCP server over HTTP, alongside /healthz and the /api/search JSON endpoint.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	serveHTTPCmd.Flags().Int("pages", 1, "Default result pages per search")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	deps, err := serverDeps(cmd, logger)
	if err != nil {
		return err
	}

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	addr := fmt.Sprintf(":%s", port)
	return mcpserver.ServeHTTP(addr, cfg.APIKey, deps)
}
