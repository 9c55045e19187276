package cmd

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/trust"
	"github.com/yf-2009/veribuy/internal/ui"
)

var sellersCmd = &cobra.Command{
	Use:   "sellers [query]",
	Short: "Show which sellers carry a query and how far to trust them",
	Args:  cobra.ExactArgs(1),
	RunE:  runSellers,
}

func init() {
	sellersCmd.Flags().Int("pages", 1, "Result pages to sample")
	sellersCmd.Flags().Bool("strict", true, "Penalise missing rating and review signals more heavily")
	rootCmd.AddCommand(sellersCmd)
}

// sellerStat aggregates the results offered by one seller.
type sellerStat struct {
	Name      string
	Count     int
	Major     bool
	MeanTrust float64
	MinPrice  *float64
}

func aggregateSellers(products []models.Product, strict bool) []sellerStat {
	type acc struct {
		sellerStat
		trustSum int
	}
	byName := make(map[string]*acc)
	for _, p := range products {
		name := p.SourceName()
		a, ok := byName[name]
		if !ok {
			a = &acc{sellerStat: sellerStat{Name: name, Major: trust.IsMajorRetailer(p.Source)}}
			byName[name] = a
		}
		a.Count++
		a.trustSum += trust.Score(p, strict).Score
		if p.Price != nil && (a.MinPrice == nil || *p.Price < *a.MinPrice) {
			price := *p.Price
			a.MinPrice = &price
		}
	}

	out := make([]sellerStat, 0, len(byName))
	for _, a := range byName {
		a.MeanTrust = float64(a.trustSum) / float64(a.Count)
		out = append(out, a.sellerStat)
	}
	slices.SortFunc(out, func(x, y sellerStat) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return out
}

func printSellers(w io.Writer, query string, sampled int, stats []sellerStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No sellers found.")
		return
	}
	fmt.Fprintf(w, "Sellers for \"%s\" (%d results sampled):\n\n", query, sampled)
	for i, s := range stats {
		kind := "Marketplace"
		if s.Major {
			kind = "Major retailer"
		}
		fmt.Fprintf(w, " %2d. %-30s %-15s trust %5.1f  from %-10s (%d results)\n",
			i+1, truncate(s.Name, 30), kind, s.MeanTrust, formatUSD(s.MinPrice), s.Count)
	}
}

func runSellers(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	provider, err := initProviders(logger)
	if err != nil {
		return err
	}

	query := args[0]
	pages, _ := cmd.Flags().GetInt("pages")
	strict, _ := cmd.Flags().GetBool("strict")

	spin := ui.NewSpinnerTo(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Sampling sellers for '%s'...", query))
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	products, err := platform.SearchPages(ctx, provider, query, pages)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	logger.Debug("sellers sampled", zap.String("query", query), zap.Int("results", len(products)))

	printSellers(cmd.OutOrStdout(), query, len(products), aggregateSellers(products, strict))
	return nil
}
