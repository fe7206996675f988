package dto

import "github.com/land-registry-map/internal/domain"

// LandRegistryTitlesQuery - query параметры GET /land-registry/titles
type LandRegistryTitlesQuery struct {
	Latitude  *float64 `query:"latitude" validate:"required"`
	Longitude *float64 `query:"longitude" validate:"required"`
	Radius    *float64 `query:"radius" validate:"omitempty,min=0,max=300"`
}

// Point возвращает центр поиска; вызывать после валидации
func (q LandRegistryTitlesQuery) Point() domain.GeographicPoint {
	return domain.GeographicPoint{
		Latitude:  *q.Latitude,
		Longitude: *q.Longitude,
	}
}
