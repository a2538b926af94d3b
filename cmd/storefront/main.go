package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/storage"
	"github.com/fjod/go_storefront/internal/web"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort        string
	APIBaseURL      string
	DBPath          string
	MigrationsPath  string
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	cacheTTL := catalog.DefaultCacheTTL
	if raw := getEnv("CATALOG_CACHE_TTL", ""); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid CATALOG_CACHE_TTL %q: %v", raw, err)
		}
		cacheTTL = parsed
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		APIBaseURL:      getEnv("STORE_API_BASE_URL", "https://fakestoreapi.com"),
		DBPath:          getEnv("STORE_DB_PATH", "storefront.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CacheTTL:        cacheTTL,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Slot storage: Redis when configured, otherwise the local SQLite file.
	var store storage.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")
		store = storage.NewRedisStore(redisClient)
	} else {
		sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open slot database: %v", err)
		}
		if err := sqliteStore.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Printf("Connected to SQLite at %s", cfg.DBPath)
		store = sqliteStore
	}
	defer store.Close()

	client := catalog.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	loader := catalog.NewLoader(client, store, cfg.CacheTTL)
	loader.Start(ctx)
	defer loader.Close()

	cartStore := cart.NewStore(ctx, store)
	unsubscribe := cartStore.Subscribe(func(totalItems int) {
		log.Printf("cart now holds %d items", totalItems)
	})
	defer unsubscribe()

	checkoutService := checkout.NewService(cartStore, store)

	productHandler := web.NewProductHandler(loader)
	cartHandler := web.NewCartHandler(cartStore)
	defer cartHandler.Close()
	checkoutHandler := web.NewCheckoutHandler(checkoutService)

	router := web.NewRouter(productHandler, cartHandler, checkoutHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
