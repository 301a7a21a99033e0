package storage_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cart-store/internal/adapter/storage"
	"github.com/rl1809/cart-store/internal/core/service"
	"github.com/rl1809/cart-store/internal/port"
)

type backend struct {
	name    string
	open    func(t *testing.T) port.CartRepository
	corrupt func(t *testing.T)
}

func backends(t *testing.T) []backend {
	path := filepath.Join(t.TempDir(), "cart.json")
	list := []backend{{
		name: "file",
		open: func(t *testing.T) port.CartRepository { return storage.NewFileAdapter(path) },
		corrupt: func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte("{\"version\":1,"), 0o644))
		},
	}}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return list
	}
	key := "integration:cart:" + uuid.NewString()
	t.Cleanup(func() {
		rdb.Del(context.Background(), key)
		rdb.Close()
	})

	return append(list, backend{
		name: "redis",
		open: func(t *testing.T) port.CartRepository { return storage.NewRedisAdapter(rdb, key) },
		corrupt: func(t *testing.T) {
			require.NoError(t, rdb.Set(context.Background(), key, "garbage", 0).Err())
		},
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIntegration_CartSurvivesRestart(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			first := service.NewCartStore(b.open(t), quietLogger())
			first.Initialize(ctx)
			first.Clear(ctx)

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					first.AddItem(ctx, "api-1", "Backpack", decimal.RequireFromString("109.95"), "1.jpg")
				}()
			}
			wg.Wait()
			first.AddItem(ctx, "api-2", "Ring", decimal.NewFromInt(5), "2.jpg")
			first.ChangeQuantity(ctx, "api-2", 2)
			first.Close(ctx)

			second := service.NewCartStore(b.open(t), quietLogger())
			second.Initialize(ctx)

			assert.False(t, second.Degraded())
			assert.True(t, first.Snapshot().Equal(second.Snapshot()))
			assert.Equal(t, 23, second.TotalItemCount())

			summary := service.NewSummarizer(service.DefaultShippingFee).Summarize(second.Snapshot())
			assert.Equal(t, "2244", summary.Total.String())
		})
	}
}

func TestIntegration_CorruptPayloadStartsEmpty(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			b.corrupt(t)

			store := service.NewCartStore(b.open(t), quietLogger())
			store.Initialize(ctx)

			assert.Zero(t, store.TotalItemCount())
			assert.False(t, store.Degraded())

			_, err := store.AddItem(ctx, "api-3", "Jacket", decimal.NewFromInt(56), "")
			require.NoError(t, err)

			cart, ok, err := b.open(t).LoadCart(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 1, cart["api-3"].Quantity)
		})
	}
}
