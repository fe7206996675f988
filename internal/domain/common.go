package domain

// DefaultSearchRadius - радиус поиска по умолчанию в метрах
const DefaultSearchRadius = 200.0

// GeographicPoint - точка WGS84 в градусах
type GeographicPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeographicPolygon - упорядоченный контур участка, без замыкающей точки
type GeographicPolygon []GeographicPoint

// BoundingBox - прямоугольник поиска в градусах
type BoundingBox struct {
	MaxLng float64 `json:"max_lng"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MinLat float64 `json:"min_lat"`
}

// ContainsStrict reports whether p lies strictly inside the box.
// Points on any edge are outside.
func (b BoundingBox) ContainsStrict(p GeographicPoint) bool {
	return p.Longitude < b.MaxLng &&
		p.Longitude > b.MinLng &&
		p.Latitude > b.MinLat &&
		p.Latitude < b.MaxLat
}

// EffectiveRadius возвращает радиус запроса или DefaultSearchRadius, если он не задан.
// Ноль - валидный радиус.
func EffectiveRadius(radius *float64) float64 {
	if radius == nil {
		return DefaultSearchRadius
	}
	return *radius
}
