package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/metrics"
)

// searchSize - верхняя граница выдачи; прямоугольник на 300 м её не достигает
const searchSize = 10000

type titleDocument struct {
	ID          string           `json:"id"`
	TitleNumber string           `json:"title_number"`
	Polygon     [][2]float64     `json:"polygon"`
	Centroid    elastic.GeoPoint `json:"centroid"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (d titleDocument) toDomain() *domain.LandRegistryTitle {
	polygon := make(domain.GeographicPolygon, len(d.Polygon))
	for i, v := range d.Polygon {
		polygon[i] = domain.GeographicPoint{Longitude: v[0], Latitude: v[1]}
	}

	return &domain.LandRegistryTitle{
		ID:          d.ID,
		TitleNumber: d.TitleNumber,
		Polygon:     polygon,
		Centroid:    domain.GeographicPoint{Latitude: d.Centroid.Lat, Longitude: d.Centroid.Lon},
		UpdatedAt:   d.UpdatedAt,
	}
}

func titleDocumentFromDomain(t *domain.LandRegistryTitle) titleDocument {
	polygon := make([][2]float64, len(t.Polygon))
	for i, p := range t.Polygon {
		polygon[i] = [2]float64{p.Longitude, p.Latitude}
	}

	return titleDocument{
		ID:          t.ID,
		TitleNumber: t.TitleNumber,
		Polygon:     polygon,
		Centroid:    elastic.GeoPoint{Lat: t.Centroid.Latitude, Lon: t.Centroid.Longitude},
		UpdatedAt:   t.UpdatedAt,
	}
}

type titleStore struct {
	es *Client
}

// NewTitleStore создаёт адаптер индекса участков
func NewTitleStore(es *Client) repository.TitleStorage {
	return &titleStore{es: es}
}

// boundingBoxQuery - четыре строгих range фильтра по центроиду
func boundingBoxQuery(box domain.BoundingBox) elastic.Query {
	return elastic.NewBoolQuery().Filter(
		elastic.NewRangeQuery("centroid.lon").Gt(box.MinLng).Lt(box.MaxLng),
		elastic.NewRangeQuery("centroid.lat").Gt(box.MinLat).Lt(box.MaxLat),
	)
}

func (s *titleStore) QueryByBoundingBox(ctx context.Context, box domain.BoundingBox) ([]*domain.LandRegistryTitle, error) {
	start := time.Now()
	defer func() {
		metrics.StoreQueryDuration.WithLabelValues(DriverName).Observe(time.Since(start).Seconds())
	}()

	result, err := s.es.client.Search().
		Index(s.es.index).
		Query(boundingBoxQuery(box)).
		Size(searchSize).
		Do(ctx)
	if err != nil {
		s.es.logger.Error("Failed to search titles by bounding box", zap.Error(err))
		return nil, fmt.Errorf("could not search titles by bounding box: %w", err)
	}

	titles := make([]*domain.LandRegistryTitle, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var doc titleDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("could not decode title %s: %w", hit.Id, err)
		}
		titles = append(titles, doc.toDomain())
	}

	return titles, nil
}

func (s *titleStore) Upsert(ctx context.Context, titles []*domain.LandRegistryTitle) error {
	if len(titles) == 0 {
		return nil
	}

	bulk := s.es.client.Bulk().Index(s.es.index).Refresh("wait_for")
	for _, t := range titles {
		bulk.Add(elastic.NewBulkIndexRequest().Id(t.ID).Doc(titleDocumentFromDomain(t)))
	}

	return s.doBulk(ctx, bulk, "upsert")
}

func (s *titleStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	bulk := s.es.client.Bulk().Index(s.es.index).Refresh("wait_for")
	for _, id := range ids {
		bulk.Add(elastic.NewBulkDeleteRequest().Id(id))
	}

	return s.doBulk(ctx, bulk, "delete")
}

func (s *titleStore) doBulk(ctx context.Context, bulk *elastic.BulkService, op string) error {
	res, err := bulk.Do(ctx)
	if err != nil {
		return fmt.Errorf("could not %s titles: %w", op, err)
	}

	if res.Errors {
		var failed []string
		for _, item := range res.Failed() {
			// удаление отсутствующего документа не ошибка
			if op == "delete" && item.Status == 404 {
				continue
			}
			failed = append(failed, item.Id)
		}
		if len(failed) > 0 {
			return fmt.Errorf("could not %s titles: failed ids %s", op, strings.Join(failed, ","))
		}
	}

	s.es.logger.Debug("Bulk request completed",
		zap.String("op", op),
		zap.Int("items", len(res.Items)))
	return nil
}

func (s *titleStore) Health(ctx context.Context) error {
	return s.es.Health(ctx)
}
