package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/land-registry-map/internal/pkg/errors"
)

// Response headers
const (
	HeaderAPIResponse   = "api-response"
	HeaderAPIAuthoriser = "api-authoriser"
)

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

// SendSuccess отдаёт data как есть (без обёртки) с заголовком
// api-response: success:data:<identifier>
func SendSuccess(c *fiber.Ctx, identifier string, data interface{}) error {
	c.Set(HeaderAPIResponse, "success:data:"+identifier)
	return c.Status(fiber.StatusOK).JSON(data)
}

// SendError отдаёт AppError со статусом и заголовком api-response: failure:<code>.
// Неизвестные ошибки превращаются в 500.
func SendError(c *fiber.Ctx, err error) error {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternalServer
	}

	c.Set(HeaderAPIResponse, "failure:"+FailureCode(appErr))
	return c.Status(appErr.StatusCode).JSON(ErrorResponse{
		Error: appErr,
	})
}

// SendUnauthorized отдаёт 401 с пустым телом
func SendUnauthorized(c *fiber.Ctx, authoriser string) error {
	c.Set(HeaderAPIResponse, "failure:"+FailureCode(errors.ErrUnauthorized))
	c.Set(HeaderAPIAuthoriser, authoriser)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Status(fiber.StatusUnauthorized)
	c.Response().ResetBody()
	return nil
}

// FailureCode - REQUEST_QUERY_INVALID -> request-query-invalid
func FailureCode(err *errors.AppError) string {
	return strings.ReplaceAll(strings.ToLower(err.Code), "_", "-")
}
