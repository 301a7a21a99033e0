package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice turns textual price input into a non-negative decimal.
// Anything unparseable or negative becomes zero.
func ParsePrice(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return NormalizePrice(d)
}

// PriceFromFloat is ParsePrice for numeric input.
func PriceFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return NormalizePrice(decimal.NewFromFloat(f))
}

// NormalizePrice clamps negative prices to zero.
func NormalizePrice(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
