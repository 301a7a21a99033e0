package storage

import (
	"context"
	"sync"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

// MemoryAdapter keeps the encoded snapshot in process memory. It goes
// through the same codec as the durable backends.
type MemoryAdapter struct {
	mu      sync.RWMutex
	payload []byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (m *MemoryAdapter) SaveCart(ctx context.Context, cart domain.Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.payload = payload
	m.mu.Unlock()
	return nil
}

func (m *MemoryAdapter) LoadCart(ctx context.Context) (domain.Cart, bool, error) {
	m.mu.RLock()
	payload := m.payload
	m.mu.RUnlock()

	if payload == nil {
		return nil, false, nil
	}
	cart, err := decodeCart(payload)
	if err != nil {
		return nil, false, &port.CorruptDataError{Err: err}
	}
	return cart, true, nil
}

// SetRaw stores payload verbatim.
func (m *MemoryAdapter) SetRaw(payload []byte) {
	m.mu.Lock()
	m.payload = append([]byte(nil), payload...)
	m.mu.Unlock()
}
