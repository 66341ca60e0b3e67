package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/tradesphere/internal/bootstrap"
	"anoa.com/tradesphere/internal/config"
	"anoa.com/tradesphere/internal/server"
	"anoa.com/tradesphere/pkg/database"
	"anoa.com/tradesphere/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.Options{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		PingTimeout:     cfg.Database.ConnectTimeout,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryBaseDelay:  cfg.Database.RetryBaseDelay,
		Debug:           !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if !cfg.IsProduction() {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := connectRedis(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var meiliClient meilisearch.ServiceManager
	if host := meiliHost(cfg.MeiliSearchHost); host != "" {
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Println("MEILISEARCH_HOST not set, search is disabled")
	}

	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("cloudinary storage unavailable, uploads are disabled: %v", err)
		imageStorage = nil
	}

	srv := server.NewServer(cfg, server.Dependencies{
		DB:      db,
		Redis:   redisClient,
		Meili:   meiliClient,
		Storage: imageStorage,
	})

	if err := bootstrap.SeedCategories(ctx, srv); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	srv.StartJobs(ctx)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exited with error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// connectRedis returns nil when Redis is not configured or unreachable.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		log.Println("REDIS_URL not set, rate limiting, caching and live messages are disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("invalid REDIS_URL: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	err = database.WithRetry(ctx, 3, time.Second, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		log.Printf("redis unreachable, continuing without it: %v", err)
		_ = client.Close()
		return nil
	}

	return client
}

func meiliHost(host string) string {
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
