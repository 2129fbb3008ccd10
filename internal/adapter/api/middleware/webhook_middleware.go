package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"ticketbot/pkg/errors"
	"ticketbot/pkg/logger"
	"ticketbot/pkg/response"
)

// WebhookSecret rejects webhook calls whose path secret does not match.
// They get a plain 404 so the endpoint is not discoverable.
func WebhookSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Param("secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				logger.Warn("Webhook call with a wrong secret from %s", c.RealIP())
				return response.Error(c, errors.NotFound("Route", nil))
			}
			return next(c)
		}
	}
}
