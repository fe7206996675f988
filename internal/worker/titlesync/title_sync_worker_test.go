package titlesync

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ConsumePending(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ClaimStale(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, minIdle, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockEventApplier is a mock of TitleSyncUseCase
type MockEventApplier struct {
	mock.Mock
}

func (m *MockEventApplier) ApplyEvent(ctx context.Context, event *domain.TitleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const (
	upsertData = `{"type":"upsert","titles":[{"id":"1","title_number":"TN1","polygon":[{"latitude":51.5,"longitude":-0.12}],"centroid":{"latitude":51.5,"longitude":-0.12}}]}`
	deleteData = `{"type":"delete","ids":["2"]}`
)

func newTestWorker(stream *MockStreamRepository, applier *MockEventApplier, maxRetries int) *TitleSyncWorker {
	w := NewTitleSyncWorker(stream, applier, "test-group", maxRetries, zap.NewNop())
	w.retryDelay = time.Millisecond
	return w
}

// expectNoBacklog - ни pending, ни зависших сообщений нет
func expectNoBacklog(stream *MockStreamRepository) {
	stream.On("ConsumePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	stream.On("ClaimStale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
}

func TestTitleSyncWorker_Name(t *testing.T) {
	w := newTestWorker(&MockStreamRepository{}, &MockEventApplier{}, 3)

	assert.Equal(t, "title-sync", w.Name())
	assert.Equal(t, "test-group", w.ConsumerGroup())
	assert.NotEmpty(t, w.ConsumerName())
}

func TestTitleSyncWorker_Stop(t *testing.T) {
	w := newTestWorker(&MockStreamRepository{}, &MockEventApplier{}, 3)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())
}

func TestTitleSyncWorker_ContextCancellation(t *testing.T) {
	stream := &MockStreamRepository{}
	w := newTestWorker(stream, &MockEventApplier{}, 3)
	expectNoBacklog(stream)

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamTitleSync, "test-group").Return(nil)
	stream.On("ConsumeBatch", mock.Anything, domain.StreamTitleSync, "test-group", mock.AnythingOfType("string"), int64(20)).
		Return([]domain.StreamMessage{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	stream.AssertExpectations(t)
}

func TestTitleSyncWorker_StopEndsLoop(t *testing.T) {
	stream := &MockStreamRepository{}
	w := newTestWorker(stream, &MockEventApplier{}, 3)
	expectNoBacklog(stream)

	stream.On("CreateConsumerGroup", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop")
	}
}

func TestTitleSyncWorker_CreateConsumerGroupError(t *testing.T) {
	stream := &MockStreamRepository{}
	w := newTestWorker(stream, &MockEventApplier{}, 3)
	expectNoBacklog(stream)

	stream.On("CreateConsumerGroup", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	err := w.Start(context.Background())
	assert.Error(t, err)
	stream.AssertNotCalled(t, "ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleSyncWorker_ProcessBatch(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, domain.StreamTitleSync, "test-group", w.ConsumerName(), int64(20)).
		Return([]domain.StreamMessage{
			{ID: "1-0", Data: upsertData},
			{ID: "2-0", Data: "{broken"},
			{ID: "3-0", Data: deleteData},
		}, nil)

	var applied []domain.TitleEventType
	applier.On("ApplyEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			applied = append(applied, args.Get(1).(*domain.TitleEvent).Type)
		}).
		Return(nil)
	stream.On("AckMessages", mock.Anything, domain.StreamTitleSync, "test-group", []string{"1-0", "2-0", "3-0"}).Return(nil)

	processed, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Equal(t, []domain.TitleEventType{domain.TitleEventUpsert, domain.TitleEventDelete}, applied)

	stream.AssertExpectations(t)
}

func TestTitleSyncWorker_ProcessBatch_Empty(t *testing.T) {
	stream := &MockStreamRepository{}
	w := newTestWorker(stream, &MockEventApplier{}, 3)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	processed, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleSyncWorker_ProcessBatch_ConsumeError(t *testing.T) {
	stream := &MockStreamRepository{}
	w := newTestWorker(stream, &MockEventApplier{}, 3)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("redis down"))

	_, err := w.processBatch(context.Background())
	assert.Error(t, err)
}

func TestTitleSyncWorker_RetriesThenSucceeds(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.StreamMessage{{ID: "1-0", Data: deleteData}}, nil)
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(errors.New("deadlock")).Twice()
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(nil).Once()
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"1-0"}).Return(nil)

	_, err := w.processBatch(context.Background())
	require.NoError(t, err)

	applier.AssertNumberOfCalls(t, "ApplyEvent", 3)
	stream.AssertExpectations(t)
}

func TestTitleSyncWorker_RetriesExhaustedStillAcks(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 2)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.StreamMessage{{ID: "1-0", Data: upsertData}}, nil)
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(errors.New("store down"))
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"1-0"}).Return(nil)

	_, err := w.processBatch(context.Background())
	require.NoError(t, err)

	applier.AssertNumberOfCalls(t, "ApplyEvent", 2)
	stream.AssertExpectations(t)
}

func TestTitleSyncWorker_InvalidEventNotRetried(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.StreamMessage{{ID: "1-0", Data: `{"type":"rename"}`}}, nil)
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(errors.New("invalid title event"))
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"1-0"}).Return(nil)

	_, err := w.processBatch(context.Background())
	require.NoError(t, err)

	applier.AssertNumberOfCalls(t, "ApplyEvent", 1)
}

func TestTitleSyncWorker_ConsumerNameStable(t *testing.T) {
	first := newTestWorker(&MockStreamRepository{}, &MockEventApplier{}, 3)
	second := newTestWorker(&MockStreamRepository{}, &MockEventApplier{}, 3)

	assert.Equal(t, first.ConsumerName(), second.ConsumerName())

	hostname, _ := os.Hostname()
	if hostname != "" {
		assert.Equal(t, hostname, first.ConsumerName())
	}
}

func TestTitleSyncWorker_PendingBeforeNew(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)

	stream.On("ConsumePending", mock.Anything, domain.StreamTitleSync, "test-group", w.ConsumerName(), int64(20)).
		Return([]domain.StreamMessage{{ID: "1-0", Data: deleteData}}, nil)
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(nil)
	stream.On("AckMessages", mock.Anything, domain.StreamTitleSync, "test-group", []string{"1-0"}).Return(nil)

	processed, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stream.AssertExpectations(t)
	stream.AssertNotCalled(t, "ClaimStale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	stream.AssertNotCalled(t, "ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleSyncWorker_UnackedMessageIsReprocessed(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)

	msg := domain.StreamMessage{ID: "1-0", Data: upsertData}

	// первый проход: новое сообщение применено, но XACK упал
	stream.On("ConsumePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()
	stream.On("ClaimStale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()
	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.StreamMessage{msg}, nil).Once()
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"1-0"}).Return(errors.New("connection reset")).Once()

	// второй проход: сообщение приходит из pending этого же консьюмера
	stream.On("ConsumePending", mock.Anything, mock.Anything, mock.Anything, w.ConsumerName(), mock.Anything).
		Return([]domain.StreamMessage{msg}, nil).Once()
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"1-0"}).Return(nil).Once()

	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := w.processBatch(context.Background())
	require.NoError(t, err)
	_, err = w.processBatch(context.Background())
	require.NoError(t, err)

	applier.AssertNumberOfCalls(t, "ApplyEvent", 2)
	stream.AssertNumberOfCalls(t, "ConsumeBatch", 1)
	stream.AssertExpectations(t)
}

func TestTitleSyncWorker_InterruptedBatchStaysPending(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)
	expectNoBacklog(stream)

	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.StreamMessage{{ID: "1-0", Data: deleteData}, {ID: "2-0", Data: deleteData}}, nil)
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(nil).Once()
	applier.On("ApplyEvent", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { _ = w.Stop() }).
		Return(errors.New("store down"))
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"1-0"}).Return(nil)

	_, err := w.processBatch(context.Background())
	require.NoError(t, err)

	stream.AssertExpectations(t)
}

func TestTitleSyncWorker_ClaimsStaleMessages(t *testing.T) {
	stream := &MockStreamRepository{}
	applier := &MockEventApplier{}
	w := newTestWorker(stream, applier, 3)

	stream.On("ConsumePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	stream.On("ClaimStale", mock.Anything, domain.StreamTitleSync, "test-group", w.ConsumerName(), time.Minute, int64(20)).
		Return([]domain.StreamMessage{{ID: "5-0", Data: deleteData}}, nil).Once()
	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	applier.On("ApplyEvent", mock.Anything, mock.Anything).Return(nil)
	stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"5-0"}).Return(nil)

	processed, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	// повторная проверка только через claimInterval
	processed, err = w.processBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)

	stream.AssertNumberOfCalls(t, "ClaimStale", 1)
	stream.AssertNumberOfCalls(t, "ConsumeBatch", 1)
}
