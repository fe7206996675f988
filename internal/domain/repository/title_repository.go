package repository

import (
	"context"

	"github.com/land-registry-map/internal/domain"
)

// TitleRepository - поиск участков вокруг точки
type TitleRepository interface {
	// FindByLocationAndRadius возвращает участки, центроид которых лежит строго внутри
	// прямоугольника, описанного вокруг круга поиска. radius == nil означает радиус по умолчанию.
	FindByLocationAndRadius(ctx context.Context, point domain.GeographicPoint, radius *float64) ([]*domain.LandRegistryTitle, error)
}

// TitleStore - адаптер хранилища участков
type TitleStore interface {
	// QueryByBoundingBox возвращает участки с центроидом строго внутри box (границы исключаются)
	QueryByBoundingBox(ctx context.Context, box domain.BoundingBox) ([]*domain.LandRegistryTitle, error)

	// Health проверяет доступность хранилища
	Health(ctx context.Context) error
}

// TitleWriter - запись участков, используется синхронизацией реестра
type TitleWriter interface {
	// Upsert вставляет участки или обновляет существующие по id
	Upsert(ctx context.Context, titles []*domain.LandRegistryTitle) error

	// Delete удаляет участки по id, отсутствующие id игнорируются
	Delete(ctx context.Context, ids []string) error
}

// TitleStorage - хранилище с чтением и записью
type TitleStorage interface {
	TitleStore
	TitleWriter
}
