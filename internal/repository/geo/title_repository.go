package geo

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/telemetry"
	"github.com/land-registry-map/internal/pkg/utils"
)

type titleRepository struct {
	store  repository.TitleStore
	logger *zap.Logger
}

// NewTitleRepository создаёт TitleRepository поверх адаптера хранилища
func NewTitleRepository(store repository.TitleStore, logger *zap.Logger) repository.TitleRepository {
	return &titleRepository{
		store:  store,
		logger: logger,
	}
}

// FindByLocationAndRadius переводит круг поиска в прямоугольник и отдаёт его хранилищу.
// Результат не сортируется и не фильтруется по расстоянию. Ошибки хранилища возвращаются как есть.
func (r *titleRepository) FindByLocationAndRadius(
	ctx context.Context,
	point domain.GeographicPoint,
	radius *float64,
) ([]*domain.LandRegistryTitle, error) {
	effectiveRadius := domain.EffectiveRadius(radius)
	box := utils.BoundingBoxFromRadius(point, effectiveRadius)

	ctx, span := telemetry.Tracer().Start(ctx, "geo.FindByLocationAndRadius")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("search.latitude", point.Latitude),
		attribute.Float64("search.longitude", point.Longitude),
		attribute.Float64("search.radius", effectiveRadius),
	)

	r.logger.Debug("Querying titles by bounding box",
		zap.Float64("radius", effectiveRadius),
		zap.Float64("min_lat", box.MinLat),
		zap.Float64("max_lat", box.MaxLat),
		zap.Float64("min_lng", box.MinLng),
		zap.Float64("max_lng", box.MaxLng))

	titles, err := r.store.QueryByBoundingBox(ctx, box)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results", len(titles)))
	return titles, nil
}
