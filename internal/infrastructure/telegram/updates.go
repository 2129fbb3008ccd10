package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ticketbot/pkg/logger"
)

const pollTimeoutSeconds = 60

// UpdateHandler consumes inbound updates. It must not block for long.
type UpdateHandler interface {
	HandleUpdate(update tgbotapi.Update)
}

// Poll fetches updates with long polling until ctx is done. Any webhook left
// by a previous deployment is removed first, since Telegram refuses
// getUpdates while one is set.
func (c *Client) Poll(ctx context.Context, handler UpdateHandler) error {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := c.api.GetUpdatesChan(cfg)

	logger.Info("Polling for updates")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			handler.HandleUpdate(update)
		}
	}
}

// SetWebhook points Telegram at url.
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		logger.Warn("Telegram reports webhook error: %s", info.LastErrorMessage)
	}
	logger.Info("Webhook set, %d pending updates", info.PendingUpdateCount)
	return nil
}
