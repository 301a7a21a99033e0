package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-store/internal/adapter/catalog"
	"github.com/rl1809/cart-store/internal/adapter/storage"
)

type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageFile   StorageBackend = "file"
	StorageRedis  StorageBackend = "redis"
	StorageMySQL  StorageBackend = "mysql"
)

// Config holds everything cmd/server needs.
type Config struct {
	AppEnv   string
	LogLevel string

	HTTPAddr string
	GRPCAddr string

	Storage   StorageBackend
	CartKey   string
	CartFile  string
	RedisAddr string
	MySQLDSN  string

	CatalogURL     string
	CatalogTimeout time.Duration

	ShippingFee         decimal.Decimal
	ClearCartOnCheckout bool
}

// Load reads the environment, first merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	fee, err := decimal.NewFromString(getEnv("SHIPPING_FEE", "30"))
	if err != nil || fee.IsNegative() {
		return Config{}, fmt.Errorf("SHIPPING_FEE must be a non-negative number")
	}

	timeout, err := time.ParseDuration(getEnv("CATALOG_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("CATALOG_TIMEOUT must be a duration: %w", err)
	}

	clearOnCheckout, err := strconv.ParseBool(getEnv("CLEAR_CART_ON_CHECKOUT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("CLEAR_CART_ON_CHECKOUT must be a bool: %w", err)
	}

	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr: getEnv("GRPC_ADDR", ":50051"),

		Storage:   StorageBackend(strings.ToLower(getEnv("STORAGE_BACKEND", string(StorageFile)))),
		CartKey:   getEnv("CART_KEY", storage.DefaultCartKey),
		CartFile:  getEnv("CART_FILE", "data/cart.json"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		MySQLDSN:  getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/cartstore?parseTime=true"),

		CatalogURL:     getEnv("CATALOG_URL", catalog.DefaultURL),
		CatalogTimeout: timeout,

		ShippingFee:         fee,
		ClearCartOnCheckout: clearOnCheckout,
	}

	switch cfg.Storage {
	case StorageMemory, StorageFile, StorageRedis, StorageMySQL:
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND %q is not one of memory, file, redis, mysql", cfg.Storage)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
