package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yf-2009/veribuy/internal/coupon"
)

var couponCmd = &cobra.Command{
	Use:   "coupon [code]",
	Short: "Look up a coupon code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoupon,
}

func init() {
	rootCmd.AddCommand(couponCmd)
}

func runCoupon(cmd *cobra.Command, args []string) error {
	engine, err := loadCoupons()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	c := engine.Apply(args[0])
	if c == nil {
		fmt.Fprintln(w, "No coupon code given.")
		return nil
	}

	fmt.Fprintf(w, "Code:     %s\n", c.Code)
	if !c.Found {
		fmt.Fprintf(w, "Status:   %s\n", c.Message)
		return nil
	}
	fmt.Fprintf(w, "Discount: %s off\n", formatUSD(&c.Amount))
	fmt.Fprintf(w, "Status:   %s\n", coupon.Status(c))
	if c.Message != "" {
		fmt.Fprintf(w, "Note:     %s\n", c.Message)
	}
	return nil
}
