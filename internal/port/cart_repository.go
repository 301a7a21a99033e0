package port

import (
	"context"
	"errors"

	"github.com/rl1809/cart-store/internal/core/domain"
)

// ErrPersistenceUnavailable wraps any failure to reach the storage backend.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

type CartRepository interface {
	// SaveCart replaces the stored snapshot. A reader never observes a partial write.
	SaveCart(ctx context.Context, cart domain.Cart) error

	// LoadCart returns ok=false when nothing was stored yet.
	// An unreadable payload fails with *CorruptDataError.
	LoadCart(ctx context.Context) (cart domain.Cart, ok bool, err error)
}
