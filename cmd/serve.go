package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/yf-2009/veribuy/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("pages", 1, "Default result pages per search")
	rootCmd.AddCommand(serveCmd)
}

func serverDeps(cmd *cobra.Command, logger *zap.Logger) (mcpserver.Deps, error) {
	provider, err := initProviders(logger)
	if err != nil {
		return mcpserver.Deps{}, err
	}
	sess, err := newSession(logger)
	if err != nil {
		return mcpserver.Deps{}, err
	}
	pages, _ := cmd.Flags().GetInt("pages")
	return mcpserver.Deps{Session: sess, Searcher: provider, Pages: pages, Logger: logger}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	deps, err := serverDeps(cmd, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting VeriBuy MCP server on stdio...")
	if err := mcpserver.Serve(deps); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
