package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/metrics"
)

type titleStore struct {
	db     *DB
	logger *zap.Logger
}

// NewTitleStore создаёт адаптер land_registry_title
func NewTitleStore(db *DB) repository.TitleStorage {
	return &titleStore{
		db:     db,
		logger: db.logger,
	}
}

func (s *titleStore) table() exp.IdentifierExpression {
	return goqu.S(s.db.Schema()).Table(TitleTable)
}

// QueryByBoundingBox - centroid[0] это долгота, centroid[1] широта; все границы строгие
func (s *titleStore) QueryByBoundingBox(ctx context.Context, box domain.BoundingBox) ([]*domain.LandRegistryTitle, error) {
	start := time.Now()
	defer func() {
		metrics.StoreQueryDuration.WithLabelValues(DriverName).Observe(time.Since(start).Seconds())
	}()

	ds := s.db.Builder.From(s.table()).
		Select(
			goqu.C("id"),
			goqu.C("title_number"),
			goqu.L("polygon::text").As("polygon"),
			goqu.L("centroid::text").As("centroid"),
			goqu.C("updated_at"),
		).
		Where(
			goqu.L("centroid[0]").Lt(box.MaxLng),
			goqu.L("centroid[0]").Gt(box.MinLng),
			goqu.L("centroid[1]").Gt(box.MinLat),
			goqu.L("centroid[1]").Lt(box.MaxLat),
		).
		Prepared(true)

	var rows []titleRow
	if err := ds.ScanStructsContext(ctx, &rows); err != nil {
		s.logger.Error("Failed to query titles by bounding box", zap.Error(err))
		return nil, fmt.Errorf("could not query titles by bounding box: %w", err)
	}

	titles := make([]*domain.LandRegistryTitle, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row.toDomain())
	}

	return titles, nil
}

// Upsert вставляет участки, при конфликте по id обновляет все поля
func (s *titleStore) Upsert(ctx context.Context, titles []*domain.LandRegistryTitle) error {
	if len(titles) == 0 {
		return nil
	}

	records := make([]interface{}, 0, len(titles))
	for _, t := range titles {
		row := titleRowFromDomain(t)
		records = append(records, goqu.Record{
			"id":           row.ID,
			"title_number": row.TitleNumber,
			"polygon":      row.Polygon,
			"centroid":     row.Centroid,
			"updated_at":   row.UpdatedAt,
		})
	}

	_, err := s.db.Builder.Insert(s.table()).
		Rows(records...).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"title_number": goqu.L("EXCLUDED.title_number"),
			"polygon":      goqu.L("EXCLUDED.polygon"),
			"centroid":     goqu.L("EXCLUDED.centroid"),
			"updated_at":   goqu.L("EXCLUDED.updated_at"),
		})).
		Prepared(true).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not upsert titles: %w", err)
	}

	s.logger.Debug("Titles upserted", zap.Int("count", len(titles)))
	return nil
}

// Delete удаляет участки по id
func (s *titleStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	res, err := s.db.Builder.Delete(s.table()).
		Where(goqu.L("id = ANY(?)", pq.Array(ids))).
		Prepared(true).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete titles: %w", err)
	}

	affected, _ := res.RowsAffected()
	s.logger.Debug("Titles deleted",
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", affected))
	return nil
}

func (s *titleStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
