package port

import (
	"context"
	"errors"

	"github.com/rl1809/cart-store/internal/core/domain"
)

var ErrCatalogFetch = errors.New("catalog fetch failed")

type CatalogSource interface {
	// ListProducts returns the normalized catalog. Failures wrap ErrCatalogFetch.
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
