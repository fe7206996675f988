package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
	"github.com/land-registry-map/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(&config.ElasticConfig{
		URLs:  []string{server.URL},
		Index: "land_registry_title",
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestBoundingBoxQuery_StrictBounds(t *testing.T) {
	src, err := boundingBoxQuery(domain.BoundingBox{MaxLng: 2, MinLng: 1, MaxLat: 4, MinLat: 3}).Source()
	require.NoError(t, err)

	raw, err := json.Marshal(src)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, `"centroid.lon":{"from":1,"include_lower":false,"include_upper":false,"to":2}`)
	assert.Contains(t, body, `"centroid.lat":{"from":3,"include_lower":false,"include_upper":false,"to":4}`)
}

func TestTitleStore_QueryByBoundingBox(t *testing.T) {
	var requestBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/land_registry_title/_search"))
		b, _ := io.ReadAll(r.Body)
		requestBody = string(b)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"took": 1,
			"hits": {
				"total": {"value": 1, "relation": "eq"},
				"hits": [{
					"_index": "land_registry_title",
					"_id": "1",
					"_source": {
						"id": "1",
						"title_number": "NGL1",
						"polygon": [[-0.12, 51.5], [-0.11, 51.51]],
						"centroid": {"lat": 51.505, "lon": -0.115},
						"updated_at": "2024-01-01T00:00:00Z"
					}
				}]
			}
		}`))
	})

	store := NewTitleStore(client)
	titles, err := store.QueryByBoundingBox(context.Background(), domain.BoundingBox{MaxLng: 0, MinLng: -1, MaxLat: 52, MinLat: 51})
	require.NoError(t, err)
	require.Len(t, titles, 1)

	assert.Equal(t, "1", titles[0].ID)
	assert.Equal(t, "NGL1", titles[0].TitleNumber)
	assert.Equal(t, domain.GeographicPolygon{
		{Longitude: -0.12, Latitude: 51.5},
		{Longitude: -0.11, Latitude: 51.51},
	}, titles[0].Polygon)
	assert.Equal(t, domain.GeographicPoint{Latitude: 51.505, Longitude: -0.115}, titles[0].Centroid)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), titles[0].UpdatedAt.UTC())
	assert.Contains(t, requestBody, `"size":10000`)
}

func TestTitleStore_QueryByBoundingBox_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"search_phase_execution_exception","reason":"boom"},"status":500}`))
	})

	titles, err := NewTitleStore(client).QueryByBoundingBox(context.Background(), domain.BoundingBox{})
	assert.Error(t, err)
	assert.Nil(t, titles)
}

func TestTitleStore_Upsert(t *testing.T) {
	var lines []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "_bulk")
		b, _ := io.ReadAll(r.Body)
		lines = strings.Split(strings.TrimSpace(string(b)), "\n")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[{"index":{"_index":"land_registry_title","_id":"7","status":201}}]}`))
	})

	err := NewTitleStore(client).Upsert(context.Background(), []*domain.LandRegistryTitle{{
		ID:          "7",
		TitleNumber: "CYM7",
		Polygon:     domain.GeographicPolygon{{Latitude: 51.48, Longitude: -3.18}},
		Centroid:    domain.GeographicPoint{Latitude: 51.48, Longitude: -3.18},
	}})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"_id":"7"`)
	assert.Contains(t, lines[1], `"polygon":[[-3.18,51.48]]`)
	assert.Contains(t, lines[1], `"centroid":{"lat":51.48,"lon":-3.18}`)
}

func TestTitleStore_DeleteFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"took":1,"errors":true,"items":[
			{"delete":{"_index":"land_registry_title","_id":"1","status":404}},
			{"delete":{"_index":"land_registry_title","_id":"2","status":500,"error":{"type":"x","reason":"y"}}}
		]}`))
	})

	err := NewTitleStore(client).Delete(context.Background(), []string{"1", "2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed ids 2")
	assert.NotContains(t, err.Error(), "1,")
}

func TestTitleDocument_RoundTrip(t *testing.T) {
	in := &domain.LandRegistryTitle{
		ID:          "9",
		TitleNumber: "AB9",
		Polygon:     domain.GeographicPolygon{{Latitude: 1, Longitude: 2}, {Latitude: 3, Longitude: 4}},
		Centroid:    domain.GeographicPoint{Latitude: 2, Longitude: 3},
		UpdatedAt:   time.Date(2022, 2, 2, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, in, titleDocumentFromDomain(in).toDomain())
}
