package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/land-registry-map/internal/domain"
)

type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) FindByLocationAndRadius(ctx context.Context, point domain.GeographicPoint, radius *float64) ([]*domain.LandRegistryTitle, error) {
	args := m.Called(ctx, point, radius)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LandRegistryTitle), args.Error(1)
}

type MockTitleWriter struct {
	mock.Mock
}

func (m *MockTitleWriter) Upsert(ctx context.Context, titles []*domain.LandRegistryTitle) error {
	args := m.Called(ctx, titles)
	return args.Error(0)
}

func (m *MockTitleWriter) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetTitles(ctx context.Context, key string) ([]*domain.LandRegistryTitle, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*domain.LandRegistryTitle), args.Bool(1), args.Error(2)
}

func (m *MockCacheRepository) SetTitles(ctx context.Context, key string, titles []*domain.LandRegistryTitle, ttl time.Duration) error {
	args := m.Called(ctx, key, titles, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidateTitles(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
