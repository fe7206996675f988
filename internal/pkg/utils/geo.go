package utils

import (
	"math"

	"github.com/land-registry-map/internal/domain"
)

const (
	// metersPerDegree - приблизительная длина градуса широты
	metersPerDegree = 111000.0

	// lngWidthFactor расширяет прямоугольник по долготе
	lngWidthFactor = 1.618

	// maxLngHalfWidth - половина всего диапазона долгот
	maxLngHalfWidth = 180.0
)

// BoundingBoxFromRadius строит прямоугольник поиска вокруг точки.
// Половина высоты radius/111000 градусов, половина ширины
// radius*1.618/(111000*cos(lat)). Около полюса ширина ограничивается 180 градусами.
func BoundingBoxFromRadius(point domain.GeographicPoint, radiusMeters float64) domain.BoundingBox {
	halfHeight := radiusMeters / metersPerDegree
	halfWidth := lngHalfWidth(point.Latitude, radiusMeters)

	return domain.BoundingBox{
		MaxLng: point.Longitude + halfWidth,
		MinLng: point.Longitude - halfWidth,
		MaxLat: point.Latitude + halfHeight,
		MinLat: point.Latitude - halfHeight,
	}
}

func lngHalfWidth(latitude, radiusMeters float64) float64 {
	if radiusMeters == 0 {
		return 0
	}

	cosLat := math.Cos(latitude * math.Pi / 180.0)
	if cosLat <= 0 {
		return maxLngHalfWidth
	}

	halfWidth := (radiusMeters * lngWidthFactor) / (metersPerDegree * cosLat)
	if math.IsNaN(halfWidth) || math.Abs(halfWidth) > maxLngHalfWidth {
		return math.Copysign(maxLngHalfWidth, radiusMeters)
	}

	return halfWidth
}
