package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yf-2009/veribuy/internal/history"
	"github.com/yf-2009/veribuy/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history [price]",
	Short: "Print a simulated 8-week price history (demo data)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Uint64("seed", 0, "Random seed for a reproducible series (0 = random)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	price := session.FallbackHistoryPrice
	if len(args) == 1 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid price %q", args[0])
		}
		price = v
	}

	sim := history.New(nil, nil)
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		sim = history.NewSeeded(seed, time.Now)
	}

	printHistory(cmd.OutOrStdout(), "current "+formatUSD(&price), sim.Generate(price))
	return nil
}
