package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/pipeline"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/session"
	"github.com/yf-2009/veribuy/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search, trust-score and rank shopping results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("max-price", "", "Maximum price (blank = no limit)")
	searchCmd.Flags().String("min-rating", "", "Minimum star rating (blank = 0)")
	searchCmd.Flags().String("sort", string(models.SortBestValue), "Sort: bestValue, lowest, highest, mostReviews")
	searchCmd.Flags().Bool("strict", true, "Penalise missing rating and review signals more heavily")
	searchCmd.Flags().Bool("prefer-major", false, "List major retailers first")
	searchCmd.Flags().String("coupon", "", "Coupon code to apply to displayed prices")
	searchCmd.Flags().Int("pages", 1, "Result pages to fetch")
	searchCmd.Flags().String("format", "table", "Output format: json, table, html")
	rootCmd.AddCommand(searchCmd)
}

func filterFromFlags(cmd *cobra.Command) models.FilterConfig {
	maxPrice, _ := cmd.Flags().GetString("max-price")
	minRating, _ := cmd.Flags().GetString("min-rating")
	sortBy, _ := cmd.Flags().GetString("sort")
	strict, _ := cmd.Flags().GetBool("strict")
	preferMajor, _ := cmd.Flags().GetBool("prefer-major")
	return models.ParseFilterConfig(maxPrice, minRating, sortBy, strict, preferMajor)
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q (want json, table or html)", format)
	}

	logger := newLogger()
	defer logger.Sync()

	provider, err := initProviders(logger)
	if err != nil {
		return err
	}
	sess, err := newSession(logger)
	if err != nil {
		return err
	}

	query := args[0]
	pages, _ := cmd.Flags().GetInt("pages")
	code, _ := cmd.Flags().GetString("coupon")

	spin := ui.NewSpinnerTo(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Searching '%s'...", query))
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	products, err := platform.SearchPages(ctx, provider, query, pages)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	logger.Debug("search complete", zap.String("query", query), zap.Int("results", len(products)))

	sess.Replace(products)
	sess.SetFilter(filterFromFlags(cmd))
	if code != "" {
		if c := sess.ApplyCoupon(code); c != nil && c.Message != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), c.Message)
		}
	}

	return writeView(cmd.OutOrStdout(), format, query, sess)
}

func validFormat(f string) bool {
	switch f {
	case "json", "table", "html":
		return true
	}
	return false
}

type jsonView struct {
	Query  string              `json:"query"`
	Total  int                 `json:"total"`
	Filter models.FilterConfig `json:"filter"`
	Coupon *models.Coupon      `json:"coupon"`
	Items  []jsonItem          `json:"items"`
}

type jsonItem struct {
	pipeline.Ranked
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
}

func writeView(w io.Writer, format, query string, sess *session.Session) error {
	snap := sess.Snapshot()

	switch format {
	case "table":
		printRankedTable(w, snap.Items, snap.Coupon)
		fmt.Fprintln(w)
		printCompare(w, snap.Compare())
		return nil
	case "html":
		return renderHTML(w, query, snap.Items, snap.Compare(), snap.Coupon)
	case "json":
		out := jsonView{
			Query:  query,
			Total:  snap.Total,
			Filter: snap.Filter,
			Coupon: snap.Coupon,
			Items:  make([]jsonItem, 0, len(snap.Items)),
		}
		for _, it := range snap.Items {
			ji := jsonItem{Ranked: it}
			if d, ok := snap.Discounted(it.Product); ok {
				ji.DiscountedPrice = &d
			}
			out.Items = append(out.Items, ji)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format %q (want json, table or html)", format)
	}
}
