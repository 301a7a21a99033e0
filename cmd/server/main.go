package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/cart-store/internal/adapter/catalog"
	"github.com/rl1809/cart-store/internal/adapter/handler"
	"github.com/rl1809/cart-store/internal/adapter/storage"
	"github.com/rl1809/cart-store/internal/config"
	"github.com/rl1809/cart-store/internal/core/service"
	"github.com/rl1809/cart-store/internal/port"
	"github.com/rl1809/cart-store/pkg/logger"
	"github.com/rl1809/cart-store/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.New(logger.Options{
		Service: "cart-store",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	repo, closeRepo, err := openRepository(ctx, cfg, lg)
	if err != nil {
		lg.Error("storage unavailable, cart will not persist", "backend", cfg.Storage, "error", err)
		repo, closeRepo = nil, func() {}
	}

	// Initialize cart store
	store := service.NewCartStore(repo, lg)
	store.Initialize(ctx)
	lg.Info("cart ready", "items", store.TotalItemCount(), "degraded", store.Degraded())

	summarizer := service.NewSummarizer(cfg.ShippingFee)
	source := catalog.NewHTTPCatalog(&http.Client{Timeout: cfg.CatalogTimeout}, cfg.CatalogURL)
	binder := handler.NewViewBinder(store, summarizer, source, lg, handler.WithClearOnCheckout(cfg.ClearCartOnCheckout))

	// The grid reports the failure; the cart works without a catalog.
	if err := binder.LoadCatalog(ctx); err != nil {
		lg.Warn("starting without catalog", "error", err)
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(binder))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		lg.Error("failed to listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}

	go func() {
		lg.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			lg.Error("gRPC server error", "error", err)
		}
	}()

	// Initialize HTTP server
	registry := prometheus.NewRegistry()
	serverMetrics := metrics.NewServerMetrics(registry, "http")
	serverMetrics.CartItems.Set(float64(store.TotalItemCount()))

	mux := http.NewServeMux()
	handler.NewHTTPHandler(binder, store, serverMetrics).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler(registry))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			lg.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	lg.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	lg.Info("gRPC server stopped")

	// Flush the cart before closing storage
	store.Close(shutdownCtx)
	closeRepo()
	lg.Info("cart flushed, connections closed")
}

func openRepository(ctx context.Context, cfg config.Config, lg *slog.Logger) (port.CartRepository, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemoryAdapter(), func() {}, nil

	case config.StorageFile:
		lg.Info("using file storage", "path", cfg.CartFile)
		return storage.NewFileAdapter(cfg.CartFile), func() {}, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		lg.Info("connected to redis", "addr", cfg.RedisAddr)
		return storage.NewRedisAdapter(rdb, cfg.CartKey), func() { rdb.Close() }, nil

	case config.StorageMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := storage.NewMySQLAdapter(db, cfg.CartKey)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		lg.Info("connected to mysql")
		return adapter, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
