package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/config"
	"github.com/yf-2009/veribuy/internal/coupon"
	"github.com/yf-2009/veribuy/internal/httputil"
	"github.com/yf-2009/veribuy/internal/logging"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/serpapi"
	"github.com/yf-2009/veribuy/internal/session"
	"github.com/yf-2009/veribuy/internal/transport"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "veribuy",
	Short: "VeriBuy - trust-scored shopping search CLI & MCP server",
	Long: "Searches Google Shopping through SerpAPI, scores each seller's trustworthiness " +
		"and ranks results by value. Also runs as an MCP server.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("provider", serpapi.Name, "Search provider")
	rootCmd.PersistentFlags().String("proxy", "", "Outbound proxy URL (http, https or socks5)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("coupon-rules", "", "Path to a YAML coupon rule table")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("proxy"); v != "" {
		cfg.ProxyURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("coupon-rules"); v != "" {
		cfg.CouponRules = v
	}
}

func newLogger() *zap.Logger {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed, continuing without logs: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// buildHTTPClient creates the rate-limited HTTP client from config.
func buildHTTPClient() (*http.Client, error) {
	t, err := transport.New(cfg.ProxyURL, cfg.RatePerSecond, cfg.RateBurst)
	if err != nil {
		return nil, err
	}
	return httputil.NewHTTPClient(t), nil
}

// initProviders registers all search providers and returns the one
// selected with --provider.
func initProviders(logger *zap.Logger) (platform.Searcher, error) {
	client, err := buildHTTPClient()
	if err != nil {
		return nil, err
	}
	provider := serpapi.NewClient(client, serpapi.Options{
		APIKey:        cfg.SerpAPIKey,
		Language:      cfg.Language,
		Country:       cfg.Country,
		Num:           cfg.ResultsPerPage,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxRetries:    cfg.MaxRetries,
	}, logger)
	platform.Register(provider)

	name, _ := rootCmd.PersistentFlags().GetString("provider")
	return platform.Get(name)
}

// loadCoupons reads the configured rule table, or the built-in one.
func loadCoupons() (*coupon.Engine, error) {
	if cfg.CouponRules == "" {
		return coupon.NewEngine(nil), nil
	}
	f, err := os.Open(cfg.CouponRules)
	if err != nil {
		return nil, fmt.Errorf("open coupon rules: %w", err)
	}
	defer f.Close()

	rules, err := coupon.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.CouponRules, err)
	}
	return coupon.NewEngine(rules), nil
}

func newSession(logger *zap.Logger) (*session.Session, error) {
	coupons, err := loadCoupons()
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{Coupons: coupons, Logger: logger}), nil
}
