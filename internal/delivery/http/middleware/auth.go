package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/land-registry-map/internal/pkg/utils"
)

// Значения заголовка api-authoriser
const (
	AuthoriserHeaderMissing = "header:missing"
	AuthoriserTokenInvalid  = "token:invalid"
)

// LocalsSubject - ключ c.Locals с subject проверенного токена
const LocalsSubject = "session_subject"

// SessionAuth проверяет HS256 токен из Authorization. При skip проверка отключена (RUNTIME=local).
func SessionAuth(secret string, skip bool) fiber.Handler {
	if skip {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return utils.SendUnauthorized(c, AuthoriserHeaderMissing)
		}

		tokenString := header
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			tokenString = strings.TrimSpace(header[7:])
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendUnauthorized(c, AuthoriserTokenInvalid)
		}

		c.Locals(LocalsSubject, claims.Subject)
		return c.Next()
	}
}
