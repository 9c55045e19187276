package cmd

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/yf-2009/veribuy/internal/coupon"
	"github.com/yf-2009/veribuy/internal/history"
	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/pipeline"
	"github.com/yf-2009/veribuy/internal/session"
	"github.com/yf-2009/veribuy/internal/trust"
)

// printRankedTable prints ranked results in a human-friendly card layout.
func printRankedTable(w io.Writer, items []pipeline.Ranked, c *models.Coupon) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No results. Try a different query or relax the filters.")
		return
	}
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, " %d. %s\n", i+1, truncate(it.Title, 90))
		fmt.Fprintf(w, "    Source: %s  |  Rating: %s  |  %s\n",
			it.SourceName(), ratingText(it.Rating), reviewsText(it.Reviews))

		badges := []string{fmt.Sprintf("[%s: %d/100]", it.Trust.Tag, it.Trust.Score)}
		if r := it.Trust.FirstReason(); r != "" {
			badges = append(badges, "["+r+"]")
		} else {
			badges = append(badges, "[No flags]")
		}
		if it.Major {
			badges = append(badges, "[Major retailer]")
		} else {
			badges = append(badges, "[Marketplace]")
		}
		fmt.Fprintf(w, "    %s\n", strings.Join(badges, " "))
		fmt.Fprintf(w, "    %s\n", priceLine(it.Product, c))
		fmt.Fprintf(w, "    Multi-aspect (demo): %s\n", aspectsLine(it.Trust.Score))
		fmt.Fprintf(w, "    %s\n", safeLink(it.Link))
	}
}

func priceLine(p models.Product, c *models.Coupon) string {
	if d, ok := coupon.DiscountedPrice(p, c); ok {
		return fmt.Sprintf("Price: %s after coupon (was %s)", formatUSD(&d), formatUSD(p.Price))
	}
	line := "Price: " + formatUSD(p.Price)
	if p.PriceText == nil {
		line += "  (price n/a)"
	}
	return line
}

func aspectsLine(score int) string {
	parts := make([]string, 0, 4)
	for _, a := range trust.Aspects(score) {
		parts = append(parts, fmt.Sprintf("%s %.1f", a.Name, a.Score))
	}
	return strings.Join(parts, " · ")
}

// printCompare prints the side-by-side comparison table.
func printCompare(w io.Writer, rows []session.CompareRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results yet.")
		return
	}
	fmt.Fprintf(w, "%-28s %10s  %-16s %s\n", "SOURCE", "PRICE", "TRUST", "COUPON")
	for _, r := range rows {
		fmt.Fprintf(w, "%-28s %10s  %-16s %s\n",
			truncate(r.Source, 28), formatUSD(r.Price),
			fmt.Sprintf("%s (%d)", r.TrustLabel, r.Score), r.CouponStatus)
	}
}

// printHistory prints a simulated price series, oldest first.
func printHistory(w io.Writer, title string, points []history.Point) {
	fmt.Fprintf(w, "Price history (simulated): %s\n\n", title)
	fmt.Fprintf(w, "%-8s %10s  %s\n", "DATE", "PRICE", "NOTE")
	for _, p := range points {
		price := p.Price
		fmt.Fprintf(w, "%-8s %10s  %s\n", p.Label(), formatUSD(&price), p.Note)
	}
}

// formatUSD formats a price as "$1,234.56", or "—" when unknown.
func formatUSD(n *float64) string {
	if n == nil || math.IsNaN(*n) || math.IsInf(*n, 0) {
		return "—"
	}
	v := math.Round(*n*100) / 100
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)
	return sign + "$" + strings.Join(parts, ",") + "." + frac
}

func ratingText(r *float64) string {
	if r == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f★", *r)
}

func reviewsText(n *int) string {
	if n == nil {
		return "reviews n/a"
	}
	return fmt.Sprintf("%d reviews", *n)
}

// safeLink returns link if it is an absolute http(s) URL, else "#".
func safeLink(link *string) string {
	if link == nil || *link == "" {
		return "#"
	}
	u, err := url.Parse(*link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "#"
	}
	return u.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
