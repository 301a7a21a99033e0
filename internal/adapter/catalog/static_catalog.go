package catalog

import (
	"context"

	"github.com/rl1809/cart-store/internal/core/domain"
)

// StaticCatalog serves a fixed product list.
type StaticCatalog struct {
	products []domain.Product
}

func NewStaticCatalog(products ...domain.Product) *StaticCatalog {
	return &StaticCatalog{products: products}
}

func (c *StaticCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}
