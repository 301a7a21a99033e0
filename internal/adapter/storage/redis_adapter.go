package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, key string) *RedisAdapter {
	if key == "" {
		key = DefaultCartKey
	}
	return &RedisAdapter{client: client, key: key}
}

// SaveCart replaces the snapshot with a single SET, which Redis applies atomically.
func (r *RedisAdapter) SaveCart(ctx context.Context, cart domain.Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", port.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *RedisAdapter) LoadCart(ctx context.Context) (domain.Cart, bool, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: redis get: %v", port.ErrPersistenceUnavailable, err)
	}

	cart, err := decodeCart(payload)
	if err != nil {
		return nil, false, &port.CorruptDataError{Key: r.key, Err: err}
	}
	return cart, true, nil
}
