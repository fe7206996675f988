package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck - именованная проверка зависимости
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse - ответ GET /health
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   time.Time         `json:"time"`
}

// HealthHandler проверяет хранилище и кеш
type HealthHandler struct {
	checks []HealthCheck
	logger *zap.Logger
}

func NewHealthHandler(logger *zap.Logger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

// Health godoc
// @Summary Проверка состояния сервиса
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status: "healthy",
		Checks: make(map[string]string, len(h.checks)),
		Time:   time.Now().UTC(),
	}

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		err := check.Check(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("Health check failed", zap.String("check", check.Name), zap.Error(err))
			resp.Status = "unhealthy"
			resp.Checks[check.Name] = err.Error()
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
