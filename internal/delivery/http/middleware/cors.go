package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/land-registry-map/internal/pkg/utils"
)

// CORS - middleware для настройки Cross-Origin Resource Sharing.
// Credentials разрешены только для явного списка origins.
func CORS(origins string) fiber.Handler {
	if strings.TrimSpace(origins) == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Authorization",
		ExposeHeaders:    utils.HeaderAPIResponse + "," + utils.HeaderAPIAuthoriser,
		AllowCredentials: origins != "*",
	})
}
