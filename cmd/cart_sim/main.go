package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-store/internal/adapter/storage"
	"github.com/rl1809/cart-store/internal/core/domain"
	"github.com/rl1809/cart-store/internal/core/service"
	"github.com/rl1809/cart-store/internal/port"
)

const (
	itemID        = "api-1"
	addRequests   = 50
	removeEvery   = 5
	shippingFee   = 30
	unitPriceText = "109.95"
)

// Replays a burst of concurrent add/decrement clicks against one cart, then
// reopens the backend and checks that the persisted cart matches memory.
func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	repo, cleanup := openRepo(ctx)
	defer cleanup()

	store := service.NewCartStore(repo, logger)
	store.Initialize(ctx)
	store.Clear(ctx)

	var addCount atomic.Int32
	var decCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < addRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			if _, err := store.AddItem(ctx, itemID, "Fjallraven Backpack", domain.ParsePrice(unitPriceText), ""); err == nil {
				addCount.Add(1)
			}
			// The goroutine's own add keeps the entry present here, so every
			// decrement lands even when it removes the entry.
			if n%removeEvery == 0 {
				store.ChangeQuantity(ctx, itemID, -1)
				decCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	expected := addRequests - addRequests/removeEvery
	summary := service.NewSummarizer(decimal.NewFromInt(shippingFee)).Summarize(store.Snapshot())

	fmt.Println("========== CART SIMULATION RESULTS ==========")
	fmt.Printf("Adds:             %d\n", addCount.Load())
	fmt.Printf("Decrements:       %d\n", decCount.Load())
	fmt.Printf("Items in cart:    %d\n", summary.Items)
	fmt.Printf("Subtotal:         $%s\n", summary.Subtotal.StringFixed(2))
	fmt.Printf("Total:            $%s\n", summary.Total.StringFixed(2))
	fmt.Printf("Degraded:         %v\n", store.Degraded())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==============================================")

	if summary.Items == expected {
		fmt.Printf("PASS: %d items after %d adds and %d decrements\n", expected, addRequests, addRequests/removeEvery)
	} else {
		fmt.Printf("FAIL: expected %d items, got %d\n", expected, summary.Items)
	}

	// Reload from storage
	reloaded, ok, err := repo.LoadCart(ctx)
	if err != nil || !ok {
		fmt.Printf("FAIL: could not reload cart: ok=%v err=%v\n", ok, err)
		return
	}
	if reloaded.Equal(store.Snapshot()) {
		fmt.Println("PASS: persisted cart matches memory")
	} else {
		fmt.Println("FAIL: persisted cart diverged from memory")
	}
}

func openRepo(ctx context.Context) (port.CartRepository, func()) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		return storage.NewRedisAdapter(rdb, "cart_sim:v1"), func() {
			rdb.Del(ctx, "cart_sim:v1")
			rdb.Close()
		}
	}

	dir, err := os.MkdirTemp("", "cart_sim")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	return storage.NewFileAdapter(filepath.Join(dir, "cart.json")), func() { os.RemoveAll(dir) }
}
