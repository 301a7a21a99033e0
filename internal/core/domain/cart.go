package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CartEntry is one line item in the cart.
type CartEntry struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// LineTotal is price * quantity.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart maps product id to its entry. No entry may have Quantity < 1.
type Cart map[string]CartEntry

func NewCart() Cart {
	return make(Cart)
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, e := range c {
		out[id] = e
	}
	return out
}

// IDs returns the entry ids in ascending order.
func (c Cart) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports whether both carts hold the same ids with the same fields.
func (c Cart) Equal(other Cart) bool {
	if len(c) != len(other) {
		return false
	}
	for id, e := range c {
		o, ok := other[id]
		if !ok {
			return false
		}
		if e.ID != o.ID || e.Title != o.Title || e.Image != o.Image || e.Quantity != o.Quantity || !e.Price.Equal(o.Price) {
			return false
		}
	}
	return true
}
