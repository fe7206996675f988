package dto

import "github.com/land-registry-map/internal/domain"

// LandRegistryTitleResource - участок в формате API.
// Perimeter хранит вершины в порядке [lng, lat].
type LandRegistryTitleResource struct {
	ID          string       `json:"id"`
	TitleNumber string       `json:"title_number"`
	Perimeter   [][2]float64 `json:"perimeter"`
}

// ToLandRegistryTitleResource конвертирует доменную модель в ресурс API.
// Centroid и UpdatedAt не передаются.
func ToLandRegistryTitleResource(model *domain.LandRegistryTitle) LandRegistryTitleResource {
	perimeter := make([][2]float64, len(model.Polygon))
	for i, p := range model.Polygon {
		perimeter[i] = [2]float64{p.Longitude, p.Latitude}
	}

	return LandRegistryTitleResource{
		ID:          model.ID,
		TitleNumber: model.TitleNumber,
		Perimeter:   perimeter,
	}
}

// ToLandRegistryTitleResources конвертирует список, пустой вход даёт пустой (не nil) срез
func ToLandRegistryTitleResources(models []*domain.LandRegistryTitle) []LandRegistryTitleResource {
	resources := make([]LandRegistryTitleResource, 0, len(models))
	for _, m := range models {
		resources = append(resources, ToLandRegistryTitleResource(m))
	}
	return resources
}
