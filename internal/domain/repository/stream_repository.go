package repository

import (
	"context"
	"time"

	"github.com/land-registry-map/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// ConsumeBatch читает до count сообщений без длительной блокировки
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error)

	// ConsumePending перечитывает неподтверждённые сообщения консьюмера
	ConsumePending(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error)

	// ClaimStale переназначает консьюмеру сообщения, зависшие у других консьюмеров дольше minIdle
	ClaimStale(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]domain.StreamMessage, error)

	// AckMessages подтверждает обработку нескольких сообщений
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// CreateConsumerGroup создаёт consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
