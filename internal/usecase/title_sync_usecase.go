package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/metrics"
)

// TitleSyncUseCase применяет события синхронизации реестра к хранилищу
type TitleSyncUseCase struct {
	writer    repository.TitleWriter
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
}

// NewTitleSyncUseCase - создание TitleSyncUseCase. cacheRepo может быть nil.
func NewTitleSyncUseCase(
	writer repository.TitleWriter,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
) *TitleSyncUseCase {
	return &TitleSyncUseCase{
		writer:    writer,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// ApplyEvent выполняет upsert или delete и сбрасывает кеш поиска
func (uc *TitleSyncUseCase) ApplyEvent(ctx context.Context, event *domain.TitleEvent) error {
	if err := event.Validate(); err != nil {
		metrics.SyncEventsProcessed.WithLabelValues(string(event.Type), "invalid").Inc()
		return fmt.Errorf("invalid title event: %w", err)
	}

	var err error
	switch event.Type {
	case domain.TitleEventUpsert:
		err = uc.writer.Upsert(ctx, event.Titles)
	case domain.TitleEventDelete:
		err = uc.writer.Delete(ctx, event.IDs)
	}
	if err != nil {
		metrics.SyncEventsProcessed.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("apply %s event: %w", event.Type, err)
	}

	metrics.SyncEventsProcessed.WithLabelValues(string(event.Type), "ok").Inc()

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.InvalidateTitles(ctx); err != nil {
			uc.logger.Warn("Failed to invalidate title cache", zap.Error(err))
		}
	}

	uc.logger.Info("Title event applied",
		zap.String("type", string(event.Type)),
		zap.Int("titles", len(event.Titles)),
		zap.Int("ids", len(event.IDs)))
	return nil
}
