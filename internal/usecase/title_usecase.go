package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/metrics"
	"github.com/land-registry-map/internal/pkg/telemetry"
	"github.com/land-registry-map/internal/repository/cache"
	"github.com/land-registry-map/internal/usecase/dto"
)

// TitleUseCase - поиск участков земельного реестра вокруг точки
type TitleUseCase struct {
	titleRepo repository.TitleRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewTitleUseCase - создание нового TitleUseCase. cacheRepo может быть nil.
func NewTitleUseCase(
	titleRepo repository.TitleRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TitleUseCase {
	return &TitleUseCase{
		titleRepo: titleRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// SearchByLocation - участки вокруг точки в формате API.
// Ошибки хранилища возвращаются без изменений, ошибки кеша только логируются.
func (uc *TitleUseCase) SearchByLocation(ctx context.Context, query dto.LandRegistryTitlesQuery) ([]dto.LandRegistryTitleResource, error) {
	point := query.Point()
	radius := domain.EffectiveRadius(query.Radius)

	ctx, span := telemetry.Tracer().Start(ctx, "usecase.SearchByLocation")
	defer span.End()

	key := cache.TitleSearchKey(point, radius)
	if titles, ok := uc.fromCache(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return dto.ToLandRegistryTitleResources(titles), nil
	}

	titles, err := uc.titleRepo.FindByLocationAndRadius(ctx, point, query.Radius)
	if err != nil {
		metrics.TitleSearchErrors.Inc()
		uc.logger.Error("Failed to find titles",
			zap.Float64("latitude", point.Latitude),
			zap.Float64("longitude", point.Longitude),
			zap.Float64("radius", radius),
			zap.Error(err))
		return nil, err
	}

	metrics.TitleSearchResults.Observe(float64(len(titles)))
	uc.toCache(ctx, key, titles)

	uc.logger.Debug("Titles found",
		zap.Float64("latitude", point.Latitude),
		zap.Float64("longitude", point.Longitude),
		zap.Float64("radius", radius),
		zap.Int("count", len(titles)))

	return dto.ToLandRegistryTitleResources(titles), nil
}

func (uc *TitleUseCase) fromCache(ctx context.Context, key string) ([]*domain.LandRegistryTitle, bool) {
	if uc.cacheRepo == nil {
		return nil, false
	}

	titles, found, err := uc.cacheRepo.GetTitles(ctx, key)
	if err != nil {
		uc.logger.Warn("Title cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		metrics.CacheMisses.WithLabelValues("titles_search").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("titles_search").Inc()
	return titles, true
}

func (uc *TitleUseCase) toCache(ctx context.Context, key string, titles []*domain.LandRegistryTitle) {
	if uc.cacheRepo == nil || uc.cacheTTL <= 0 {
		return
	}

	if err := uc.cacheRepo.SetTitles(ctx, key, titles, uc.cacheTTL); err != nil {
		uc.logger.Warn("Title cache write failed", zap.String("key", key), zap.Error(err))
	}
}
