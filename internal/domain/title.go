package domain

import "time"

// LandRegistryTitle - зарегистрированный земельный участок
type LandRegistryTitle struct {
	ID          string            `json:"id"`
	TitleNumber string            `json:"title_number"`
	Polygon     GeographicPolygon `json:"polygon"`
	Centroid    GeographicPoint   `json:"centroid"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
