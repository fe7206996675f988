package titlesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/worker"
)

const (
	maxBatchSize    = 20                     // максимум сообщений за раз
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second

	// staleIdle - сколько сообщение должно висеть у другого консьюмера, чтобы его забрать
	staleIdle = time.Minute
	// claimInterval - как часто проверять зависшие сообщения
	claimInterval = 30 * time.Second
)

var errInterrupted = errors.New("title sync interrupted")

// EventApplier применяет событие синхронизации (usecase.TitleSyncUseCase)
type EventApplier interface {
	ApplyEvent(ctx context.Context, event *domain.TitleEvent) error
}

// TitleSyncWorker читает события реестра из stream:land-registry:title:sync
type TitleSyncWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	applier      EventApplier
	consumerName string
	maxRetries   int
	retryDelay   time.Duration
	lastClaim    time.Time
}

// NewTitleSyncWorker создает новый TitleSyncWorker
func NewTitleSyncWorker(
	streamRepo repository.StreamRepository,
	applier EventApplier,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *TitleSyncWorker {
	// имя стабильно между рестартами, чтобы воркер дочитал свой pending
	consumerName, _ := os.Hostname()
	if consumerName == "" {
		consumerName = "title-sync"
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &TitleSyncWorker{
		BaseWorker:   worker.NewBaseWorker("title-sync", domain.StreamTitleSync, consumerGroup, logger),
		streamRepo:   streamRepo,
		applier:      applier,
		consumerName: consumerName,
		maxRetries:   maxRetries,
		retryDelay:   200 * time.Millisecond,
	}
}

// ConsumerName - имя консьюмера в группе
func (w *TitleSyncWorker) ConsumerName() string {
	return w.consumerName
}

// Start запускает воркер
func (w *TitleSyncWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting TitleSyncWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_retries", w.maxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.Stream(), w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.sleep(ctx, errorSleep)
				continue
			}

			if processed == 0 {
				w.sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// processBatch применяет события по порядку и подтверждает их одной командой.
// Возвращает количество прочитанных сообщений.
func (w *TitleSyncWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.nextBatch(ctx)
	if err != nil {
		return 0, err
	}

	if len(messages) == 0 {
		return 0, nil
	}

	ackIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			// битое сообщение подтверждаем, чтобы не застревало
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			ackIDs = append(ackIDs, msg.ID)
			continue
		}

		if err := w.applyWithRetry(ctx, event); err != nil {
			if errors.Is(err, errInterrupted) || ctx.Err() != nil {
				// остальные сообщения остаются в pending
				break
			}
			logger.Error("Dropping title event after retries",
				zap.String("message_id", msg.ID),
				zap.String("type", string(event.Type)),
				zap.Int("attempts", w.maxRetries),
				zap.Error(err))
		}
		ackIDs = append(ackIDs, msg.ID)
	}

	if err := w.streamRepo.AckMessages(ctx, w.Stream(), w.ConsumerGroup(), ackIDs); err != nil {
		// сообщения остаются в pending и будут перечитаны через ConsumePending
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Info("Batch processed",
		zap.Int("received", len(messages)),
		zap.Int("acked", len(ackIDs)))

	return len(messages), nil
}

// nextBatch читает сначала собственный pending, затем зависшие у других консьюмеров
// сообщения и только потом новые
func (w *TitleSyncWorker) nextBatch(ctx context.Context) ([]domain.StreamMessage, error) {
	pending, err := w.streamRepo.ConsumePending(ctx, w.Stream(), w.ConsumerGroup(), w.consumerName, maxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending messages: %w", err)
	}
	if len(pending) > 0 {
		w.Logger().Info("Reprocessing pending messages", zap.Int("count", len(pending)))
		return pending, nil
	}

	if time.Since(w.lastClaim) >= claimInterval {
		w.lastClaim = time.Now()
		claimed, err := w.streamRepo.ClaimStale(ctx, w.Stream(), w.ConsumerGroup(), w.consumerName, staleIdle, maxBatchSize)
		if err != nil {
			w.Logger().Warn("Failed to claim stale messages", zap.Error(err))
		} else if len(claimed) > 0 {
			return claimed, nil
		}
	}

	messages, err := w.streamRepo.ConsumeBatch(ctx, w.Stream(), w.ConsumerGroup(), w.consumerName, maxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to consume batch: %w", err)
	}
	return messages, nil
}

func (w *TitleSyncWorker) applyWithRetry(ctx context.Context, event *domain.TitleEvent) error {
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.applier.ApplyEvent(ctx, event); err == nil {
			return nil
		}

		if event.Validate() != nil {
			// невалидное событие повторять бессмысленно
			return err
		}

		w.Logger().Warn("Failed to apply title event",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < w.maxRetries && !w.sleep(ctx, w.retryDelay*time.Duration(attempt)) {
			return errInterrupted
		}
	}
	return err
}

// sleep ждёт d, false если контекст отменён или воркер остановлен
func (w *TitleSyncWorker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.StopChan():
		return false
	}
}

// parseMessage парсит сообщение из стрима в TitleEvent
func parseMessage(msg domain.StreamMessage) (*domain.TitleEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("empty 'data' field")
	}

	var event domain.TitleEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
