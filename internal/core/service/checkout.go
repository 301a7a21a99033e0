package service

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-store/internal/core/domain"
)

// DefaultShippingFee is the flat shipping charge applied to every order.
var DefaultShippingFee = decimal.NewFromInt(30)

// Summary is the order summary shown on the cart page and at checkout.
type Summary struct {
	Items    int
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Summarizer computes totals from a cart. It holds no state besides the fee.
type Summarizer struct {
	fee decimal.Decimal
}

func NewSummarizer(shippingFee decimal.Decimal) Summarizer {
	return Summarizer{fee: domain.NormalizePrice(shippingFee)}
}

func (s Summarizer) ShippingFee() decimal.Decimal {
	return s.fee
}

func (s Summarizer) Subtotal(cart domain.Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range cart {
		sum = sum.Add(e.LineTotal())
	}
	return sum
}

func (s Summarizer) Total(cart domain.Cart) decimal.Decimal {
	return s.Subtotal(cart).Add(s.fee)
}

func (s Summarizer) LineItemCount(cart domain.Cart) int {
	return countItems(cart)
}

func (s Summarizer) Summarize(cart domain.Cart) Summary {
	subtotal := s.Subtotal(cart)
	return Summary{
		Items:    s.LineItemCount(cart),
		Subtotal: subtotal,
		Shipping: s.fee,
		Total:    subtotal.Add(s.fee),
	}
}
