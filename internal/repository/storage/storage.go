package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/repository/elastic"
	"github.com/land-registry-map/internal/repository/memory"
	"github.com/land-registry-map/internal/repository/postgres"
)

// Storage - выбранное STORAGE_DRIVER хранилище участков
type Storage struct {
	Driver string
	Titles repository.TitleStorage
	closer func() error
}

// Close закрывает соединение с хранилищем
func (s *Storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Open подключается к хранилищу по cfg.Storage.Driver
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := postgres.New(&cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver: cfg.Storage.Driver,
			Titles: postgres.NewTitleStore(db),
			closer: db.Close,
		}, nil

	case config.StorageDriverElasticsearch:
		es, err := elastic.New(&cfg.Elastic, logger)
		if err != nil {
			return nil, err
		}
		if err := es.EnsureIndex(ctx); err != nil {
			_ = es.Close()
			return nil, err
		}
		return &Storage{
			Driver: cfg.Storage.Driver,
			Titles: elastic.NewTitleStore(es),
			closer: es.Close,
		}, nil

	case config.StorageDriverMemory:
		store := memory.NewTitleStore(logger)
		if cfg.Memory.SeedFile != "" {
			if err := store.LoadSeedFile(ctx, cfg.Memory.SeedFile); err != nil {
				return nil, err
			}
		}
		return &Storage{
			Driver: cfg.Storage.Driver,
			Titles: store,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
