package handler

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"ticketbot/internal/infrastructure/telegram"
	"ticketbot/pkg/errors"
	"ticketbot/pkg/response"
)

type WebhookHandler struct {
	updates telegram.UpdateHandler
}

func NewWebhookHandler(updates telegram.UpdateHandler) *WebhookHandler {
	return &WebhookHandler{updates: updates}
}

// ReceiveUpdate accepts one update pushed by Telegram. Processing happens
// on the conversation queue, so the request returns right away.
func (h *WebhookHandler) ReceiveUpdate(c echo.Context) error {
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		return response.Error(c, errors.BadRequest("Invalid update payload", err))
	}

	h.updates.HandleUpdate(update)
	return c.NoContent(http.StatusOK)
}
