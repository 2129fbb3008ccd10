package router

import (
	"github.com/labstack/echo/v4"

	"ticketbot/internal/adapter/api/handler"
)

func Setup(e *echo.Echo, healthHandler *handler.HealthHandler, webhookHandler *handler.WebhookHandler, secret string) {
	SetupHealthRouter(e, healthHandler)
	if webhookHandler != nil {
		SetupWebhookRouter(e, webhookHandler, secret)
	}
}
