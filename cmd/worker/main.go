package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/logger"
	"github.com/land-registry-map/internal/repository/cache"
	redisRepo "github.com/land-registry-map/internal/repository/redis"
	"github.com/land-registry-map/internal/repository/storage"
	"github.com/land-registry-map/internal/usecase"
	"github.com/land-registry-map/internal/worker"
	"github.com/land-registry-map/internal/worker/titlesync"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Server.ServiceAlias+"-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Title Sync Worker",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Title storage
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open title storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close title storage", zap.Error(err))
		}
	}()

	// 4. Redis: stream + search cache invalidation
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	var cacheRepo repository.CacheRepository
	if cfg.Cache.Enabled {
		cacheRepo = cache.NewCacheRepository(redisClient)
	}
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 5. Use case and workers
	syncUC := usecase.NewTitleSyncUseCase(store.Titles, cacheRepo, log)

	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(titlesync.NewTitleSyncWorker(
		streamRepo,
		syncUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	))

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 6. Wait for signal or worker failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case err := <-workerManager.Errors():
		log.Error("Worker exited with error", zap.Error(err))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := workerManager.Stop(stopCtx); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
