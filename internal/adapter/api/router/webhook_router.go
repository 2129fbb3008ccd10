package router

import (
	"github.com/labstack/echo/v4"

	"ticketbot/internal/adapter/api/handler"
	"ticketbot/internal/adapter/api/middleware"
)

// SetupWebhookRouter exposes the Telegram webhook under the secret path.
func SetupWebhookRouter(e *echo.Echo, webhookHandler *handler.WebhookHandler, secret string) {
	e.POST("/telegram/:secret", webhookHandler.ReceiveUpdate, middleware.WebhookSecret(secret))
}
