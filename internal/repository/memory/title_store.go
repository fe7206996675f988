package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
)

// TitleStore - хранилище участков в памяти процесса, для локального запуска и тестов
type TitleStore struct {
	mu     sync.RWMutex
	titles map[string]*domain.LandRegistryTitle
	logger *zap.Logger
}

var _ repository.TitleStorage = (*TitleStore)(nil)

// NewTitleStore создаёт пустое хранилище
func NewTitleStore(logger *zap.Logger) *TitleStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TitleStore{
		titles: make(map[string]*domain.LandRegistryTitle),
		logger: logger,
	}
}

// LoadSeedFile загружает участки из JSON файла (массив LandRegistryTitle)
func (s *TitleStore) LoadSeedFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", path, err)
	}

	var titles []*domain.LandRegistryTitle
	if err := json.Unmarshal(data, &titles); err != nil {
		return fmt.Errorf("decode seed file %s: %w", path, err)
	}

	if err := s.Upsert(ctx, titles); err != nil {
		return err
	}

	s.logger.Info("Seed titles loaded",
		zap.String("path", path),
		zap.Int("count", len(titles)),
		zap.Int("total", s.Len()))
	return nil
}

// QueryByBoundingBox возвращает участки с центроидом строго внутри box
func (s *TitleStore) QueryByBoundingBox(ctx context.Context, box domain.BoundingBox) ([]*domain.LandRegistryTitle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.LandRegistryTitle, 0)
	for _, t := range s.titles {
		if box.ContainsStrict(t.Centroid) {
			result = append(result, cloneTitle(t))
		}
	}
	return result, nil
}

// Upsert вставляет или заменяет участки по id
func (s *TitleStore) Upsert(ctx context.Context, titles []*domain.LandRegistryTitle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range titles {
		if t == nil || t.ID == "" {
			return fmt.Errorf("title without id")
		}
		s.titles[t.ID] = cloneTitle(t)
	}
	return nil
}

// Delete удаляет участки по id
func (s *TitleStore) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.titles, id)
	}
	return nil
}

// Len - количество участков
func (s *TitleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.titles)
}

func (s *TitleStore) Health(ctx context.Context) error {
	return ctx.Err()
}

func cloneTitle(t *domain.LandRegistryTitle) *domain.LandRegistryTitle {
	cp := *t
	cp.Polygon = append(domain.GeographicPolygon(nil), t.Polygon...)
	return &cp
}
