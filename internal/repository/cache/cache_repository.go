package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
)

const titleSearchPrefix = "titles:search:"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

// TitleSearchKey - ключ результата поиска для точки и эффективного радиуса
func TitleSearchKey(point domain.GeographicPoint, radius float64) string {
	return titleSearchPrefix +
		strconv.FormatFloat(point.Latitude, 'f', -1, 64) + ":" +
		strconv.FormatFloat(point.Longitude, 'f', -1, 64) + ":" +
		strconv.FormatFloat(radius, 'f', -1, 64)
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// GetTitles получает результат поиска из кеша
func (r *cacheRepository) GetTitles(ctx context.Context, key string) ([]*domain.LandRegistryTitle, bool, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil // Cache miss
	}

	var titles []*domain.LandRegistryTitle
	if err := json.Unmarshal(data, &titles); err != nil {
		r.logger.Error("Failed to unmarshal titles from cache", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("unmarshal titles: %w", err)
	}
	if titles == nil {
		titles = []*domain.LandRegistryTitle{}
	}

	return titles, true, nil
}

// SetTitles сохраняет результат поиска в кеше
func (r *cacheRepository) SetTitles(ctx context.Context, key string, titles []*domain.LandRegistryTitle, ttl time.Duration) error {
	data, err := json.Marshal(titles)
	if err != nil {
		r.logger.Error("Failed to marshal titles", zap.Error(err))
		return fmt.Errorf("marshal titles: %w", err)
	}

	return r.Set(ctx, key, data, ttl)
}

// InvalidateTitles удаляет все ключи titles:search:*
func (r *cacheRepository) InvalidateTitles(ctx context.Context) error {
	var removed int64
	iter := r.client.Scan(ctx, 0, titleSearchPrefix+"*", 500).Iterator()

	keys := make([]string, 0, 500)
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		n, err := r.client.Unlink(ctx, keys...).Result()
		if err != nil {
			return err
		}
		removed += n
		keys = keys[:0]
		return nil
	}

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == cap(keys) {
			if err := flush(); err != nil {
				return fmt.Errorf("cache invalidate error: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan error: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("cache invalidate error: %w", err)
	}

	r.logger.Debug("Title search cache invalidated", zap.Int64("keys", removed))
	return nil
}
