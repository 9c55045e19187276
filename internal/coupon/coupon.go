// Package coupon resolves discount codes against a static rule table.
package coupon

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yf-2009/veribuy/internal/models"
)

// Rule describes what a known code is worth.
type Rule struct {
	Amount   float64 `yaml:"amount"`
	Verified bool    `yaml:"verified"`
	Message  string  `yaml:"message"`
}

// Rules maps upper-case codes to their rule.
type Rules map[string]Rule

// DefaultRules returns the built-in demo table.
func DefaultRules() Rules {
	return Rules{
		"VERIBUY5": {Amount: 0.75, Verified: true, Message: "Verified coupon applied (demo)."},
		"WELCOME":  {Amount: 0.50, Verified: true, Message: "Verified welcome coupon applied (demo)."},
		"SAVE10":   {Amount: 1.00, Verified: false, Message: "Found, but not verified for all sellers (demo)."},
	}
}

// LoadRules parses a YAML document of the form
//
//	SAVE10:
//	  amount: 1.00
//	  verified: false
//	  message: Found, but not verified for all sellers.
func LoadRules(r io.Reader) (Rules, error) {
	var raw map[string]Rule
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Rules{}, nil
		}
		return nil, fmt.Errorf("decode coupon rules: %w", err)
	}
	rules := make(Rules, len(raw))
	for code, rule := range raw {
		c := Normalize(code)
		if c == "" {
			return nil, errors.New("coupon rule with blank code")
		}
		if rule.Amount < 0 {
			return nil, fmt.Errorf("coupon %s: negative amount %.2f", c, rule.Amount)
		}
		rules[c] = rule
	}
	return rules, nil
}

// Normalize trims and upper-cases a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Engine applies codes against a fixed rule table.
type Engine struct {
	rules Rules
}

// NewEngine creates an engine; nil rules means the default table.
func NewEngine(rules Rules) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Apply resolves code. A blank code clears the coupon and returns nil. An
// unknown code yields an unverified, zero-value coupon that keeps the code.
func (e *Engine) Apply(code string) *models.Coupon {
	c := Normalize(code)
	if c == "" {
		return nil
	}
	rule, ok := e.rules[c]
	if !ok {
		return &models.Coupon{
			Code:    c,
			Message: fmt.Sprintf("Code %q not found (demo).", c),
		}
	}
	return &models.Coupon{
		Code:     c,
		Amount:   rule.Amount,
		Verified: rule.Verified,
		Found:    true,
		Message:  rule.Message,
	}
}

// DiscountedPrice returns the price after c, floored at zero. ok is false
// when there is no coupon or the product has no price.
func DiscountedPrice(p models.Product, c *models.Coupon) (price float64, ok bool) {
	if c == nil || p.Price == nil {
		return 0, false
	}
	return max(0, *p.Price-c.Amount), true
}

// Status is the short comparison-table label for the active coupon.
func Status(c *models.Coupon) string {
	switch {
	case c == nil:
		return "—"
	case c.Verified:
		return "Verified applied"
	default:
		return "Unverified"
	}
}
