// Package ranking combines price and trust into a single best-value figure.
package ranking

import "github.com/yf-2009/veribuy/internal/models"

// UnknownPrice is substituted for a missing price so the item ranks low.
const UnknownPrice = 999

const (
	priceCeiling = 120
	pricePerUnit = 5
	priceWeight  = 0.55
	trustWeight  = 0.45
)

// Value scores a product; higher is a better deal.
func Value(p models.Product, trustScore int) float64 {
	price := float64(UnknownPrice)
	if p.Price != nil {
		price = *p.Price
	}
	priceComponent := max(0, priceCeiling-price*pricePerUnit)
	return priceComponent*priceWeight + float64(trustScore)*trustWeight
}
