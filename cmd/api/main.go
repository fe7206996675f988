package main

// @title Land Registry Map API
// @version 1.0.0
// @description Поиск участков земельного реестра вокруг точки.
// @description Участок попадает в ответ, если его центроид лежит внутри прямоугольника, описанного вокруг круга поиска.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey SessionToken
// @in header
// @name Authorization

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/land-registry-map/docs"
	"github.com/land-registry-map/internal/config"
	httpDelivery "github.com/land-registry-map/internal/delivery/http"
	"github.com/land-registry-map/internal/delivery/http/handler"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/logger"
	"github.com/land-registry-map/internal/pkg/telemetry"
	"github.com/land-registry-map/internal/repository/cache"
	"github.com/land-registry-map/internal/repository/geo"
	"github.com/land-registry-map/internal/repository/storage"
	"github.com/land-registry-map/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Server.ServiceAlias)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Land Registry Map API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("runtime", cfg.Server.Runtime),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Tracing
	if cfg.Telemetry.Enabled {
		shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer shutdownTracer()
		log.Info("Tracing enabled", zap.String("endpoint", cfg.Telemetry.Endpoint))
	}

	// 4. Title storage
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open title storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close title storage", zap.Error(err))
		}
	}()

	if err := store.Titles.Health(ctx); err != nil {
		log.Fatal("Title storage health check failed", zap.Error(err))
	}
	log.Info("Title storage connected", zap.String("driver", store.Driver))

	healthChecks := []handler.HealthCheck{
		{Name: "store", Check: store.Titles.Health},
	}

	// 5. Search cache (optional)
	var cacheRepo repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		cacheRepo = cache.NewCacheRepository(redisClient)
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "cache", Check: redisClient.Health})
		log.Info("Search cache enabled", zap.Duration("ttl", cfg.Cache.SearchCacheTTL))
	}

	// 6. Repositories and use cases
	titleRepo := geo.NewTitleRepository(store.Titles, log)
	titleUC := usecase.NewTitleUseCase(titleRepo, cacheRepo, log, cfg.Cache.SearchCacheTTL)

	// 7. HTTP
	server := httpDelivery.NewServer(
		cfg,
		log,
		handler.NewTitleHandler(titleUC, log),
		handler.NewHealthHandler(log, healthChecks...),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.Bool("session_auth", !cfg.IsLocal()),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
