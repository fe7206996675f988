package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/domain"
	"github.com/land-registry-map/internal/domain/repository"
	"github.com/land-registry-map/internal/pkg/utils"
	"github.com/land-registry-map/internal/repository/geo"
	"github.com/land-registry-map/internal/repository/memory"
	"github.com/land-registry-map/internal/usecase"
	"github.com/land-registry-map/internal/usecase/dto"
)

type failingStore struct{}

func (failingStore) QueryByBoundingBox(ctx context.Context, box domain.BoundingBox) ([]*domain.LandRegistryTitle, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

func setupTitleApp(t *testing.T, titles ...*domain.LandRegistryTitle) *fiber.App {
	t.Helper()

	store := memory.NewTitleStore(zap.NewNop())
	require.NoError(t, store.Upsert(context.Background(), titles))

	return newTitleApp(store)
}

func newTitleApp(store repository.TitleStore) *fiber.App {
	logger := zap.NewNop()
	titleUC := usecase.NewTitleUseCase(geo.NewTitleRepository(store, logger), nil, logger, time.Minute)
	h := NewTitleHandler(titleUC, logger)

	app := fiber.New()
	app.Get("/land-registry/titles", h.GetLandRegistryTitles)
	return app
}

func titleAt(id string, lat, lng float64) *domain.LandRegistryTitle {
	return &domain.LandRegistryTitle{
		ID:          id,
		TitleNumber: "TN" + id,
		Polygon: domain.GeographicPolygon{
			{Latitude: lat, Longitude: lng},
			{Latitude: lat + 0.0001, Longitude: lng},
			{Latitude: lat + 0.0001, Longitude: lng + 0.0001},
			{Latitude: lat, Longitude: lng},
		},
		Centroid: domain.GeographicPoint{Latitude: lat + 0.00005, Longitude: lng + 0.00005},
	}
}

func TestTitleHandler_GetLandRegistryTitles(t *testing.T) {
	app := setupTitleApp(t,
		titleAt("near", 51.5005, -0.1205),
		titleAt("far", 51.51, -0.12),
	)

	req := httptest.NewRequest("GET", "/land-registry/titles?latitude=51.5&longitude=-0.12", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "success:data:land-registry-title", resp.Header.Get(utils.HeaderAPIResponse))

	var body []dto.LandRegistryTitleResource
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "near", body[0].ID)
	assert.Equal(t, "TNnear", body[0].TitleNumber)
	require.Len(t, body[0].Perimeter, 4)
	assert.Equal(t, [2]float64{-0.1205, 51.5005}, body[0].Perimeter[0])
}

func TestTitleHandler_GetLandRegistryTitles_WiderRadius(t *testing.T) {
	app := setupTitleApp(t,
		titleAt("near", 51.5005, -0.1205),
		titleAt("edge", 51.5022, -0.12),
	)

	req := httptest.NewRequest("GET", "/land-registry/titles?latitude=51.5&longitude=-0.12&radius=300", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []dto.LandRegistryTitleResource
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 2)
}

func TestTitleHandler_GetLandRegistryTitles_Empty(t *testing.T) {
	app := setupTitleApp(t, titleAt("far", 10, 10))

	req := httptest.NewRequest("GET", "/land-registry/titles?latitude=51.5&longitude=-0.12&radius=0", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestTitleHandler_GetLandRegistryTitles_InvalidQuery(t *testing.T) {
	app := setupTitleApp(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing latitude", "longitude=-0.12", "latitude"},
		{"missing longitude", "latitude=51.5", "longitude"},
		{"non numeric latitude", "latitude=north&longitude=-0.12", "latitude"},
		{"nan longitude", "latitude=51.5&longitude=NaN", "longitude"},
		{"radius too large", "latitude=51.5&longitude=-0.12&radius=301", "radius"},
		{"negative radius", "latitude=51.5&longitude=-0.12&radius=-1", "radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/land-registry/titles?"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "failure:request-query-invalid", resp.Header.Get(utils.HeaderAPIResponse))

			var body utils.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.NotNil(t, body.Error)
			assert.Equal(t, "REQUEST_QUERY_INVALID", body.Error.Code)
			assert.Contains(t, body.Error.Details, tt.field)
		})
	}
}

func TestTitleHandler_GetLandRegistryTitles_StorageError(t *testing.T) {
	app := newTitleApp(failingStore{})

	req := httptest.NewRequest("GET", "/land-registry/titles?latitude=51.5&longitude=-0.12", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "failure:internal-server-error", resp.Header.Get(utils.HeaderAPIResponse))
}
