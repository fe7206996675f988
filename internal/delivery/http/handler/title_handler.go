package handler

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/pkg/errors"
	"github.com/land-registry-map/internal/pkg/utils"
	"github.com/land-registry-map/internal/pkg/validator"
	"github.com/land-registry-map/internal/usecase"
	"github.com/land-registry-map/internal/usecase/dto"
)

// ResourceLandRegistryTitle - идентификатор ресурса в заголовке api-response
const ResourceLandRegistryTitle = "land-registry-title"

// TitleHandler - обработчик поиска участков земельного реестра
type TitleHandler struct {
	titleUC *usecase.TitleUseCase
	logger  *zap.Logger
}

// NewTitleHandler - создание нового TitleHandler
func NewTitleHandler(titleUC *usecase.TitleUseCase, logger *zap.Logger) *TitleHandler {
	return &TitleHandler{
		titleUC: titleUC,
		logger:  logger,
	}
}

// GetLandRegistryTitles godoc
// @Summary Участки земельного реестра вокруг точки
// @Description Возвращает участки, центроид которых лежит внутри прямоугольника, описанного вокруг круга поиска. Радиус по умолчанию 200 метров.
// @Tags LandRegistry
// @Produce json
// @Security SessionToken
// @Param latitude query number true "Широта центра поиска"
// @Param longitude query number true "Долгота центра поиска"
// @Param radius query number false "Радиус поиска в метрах (0-300)" default(200)
// @Success 200 {array} dto.LandRegistryTitleResource
// @Header 200 {string} api-response "success:data:land-registry-title"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 "Пустое тело, заголовок api-authoriser"
// @Failure 500 {object} utils.ErrorResponse
// @Router /land-registry/titles [get]
func (h *TitleHandler) GetLandRegistryTitles(c *fiber.Ctx) error {
	var query dto.LandRegistryTitlesQuery
	invalid := map[string]interface{}{}

	query.Latitude = parseFloatQuery(c, "latitude", invalid)
	query.Longitude = parseFloatQuery(c, "longitude", invalid)
	query.Radius = parseFloatQuery(c, "radius", invalid)

	if len(invalid) > 0 {
		return utils.SendError(c, errors.ErrInvalidQuery.WithDetails(invalid))
	}

	if err := validator.Validate(&query); err != nil {
		return utils.SendError(c, err)
	}

	resources, err := h.titleUC.SearchByLocation(c.UserContext(), query)
	if err != nil {
		h.logger.Error("Failed to search land registry titles", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, ResourceLandRegistryTitle, resources)
}

// parseFloatQuery - пустой параметр даёт nil, нечисловой попадает в invalid
func parseFloatQuery(c *fiber.Ctx, name string, invalid map[string]interface{}) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		invalid[name] = "must be a number"
		return nil
	}
	return &v
}
