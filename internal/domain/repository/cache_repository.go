package repository

import (
	"context"
	"time"

	"github.com/land-registry-map/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу, nil при промахе
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetTitles получает результат поиска участков, found=false при промахе
	GetTitles(ctx context.Context, key string) (titles []*domain.LandRegistryTitle, found bool, err error)

	// SetTitles сохраняет результат поиска участков
	SetTitles(ctx context.Context, key string, titles []*domain.LandRegistryTitle, ttl time.Duration) error

	// InvalidateTitles удаляет все закешированные результаты поиска
	InvalidateTitles(ctx context.Context) error
}
