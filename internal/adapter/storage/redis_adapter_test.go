package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/port"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisAdapter_NoData(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, "test:cart:none")
	client.Del(ctx, "test:cart:none")

	_, ok, err := adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisAdapter_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, "test:cart:roundtrip")
	defer client.Del(ctx, "test:cart:roundtrip")

	require.NoError(t, adapter.SaveCart(ctx, sampleCart()))
	cart, ok, err := adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, sampleCart().Equal(cart))

	require.NoError(t, adapter.SaveCart(ctx, domain.NewCart()))
	cart, ok, err = adapter.LoadCart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, cart)
}

func TestRedisAdapter_Corrupt(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, "test:cart:corrupt")
	defer client.Del(ctx, "test:cart:corrupt")

	client.Set(ctx, "test:cart:corrupt", "{broken", 0)

	_, _, err := adapter.LoadCart(ctx)
	var corrupt *port.CorruptDataError
	assert.ErrorAs(t, err, &corrupt)
}

func TestRedisAdapter_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	adapter := NewRedisAdapter(client, "")
	err := adapter.SaveCart(context.Background(), sampleCart())
	assert.ErrorIs(t, err, port.ErrPersistenceUnavailable)

	_, _, err = adapter.LoadCart(context.Background())
	assert.ErrorIs(t, err, port.ErrPersistenceUnavailable)
}
