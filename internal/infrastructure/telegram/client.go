package telegram

import (
	"context"
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/usecase"
	"ticketbot/pkg/logger"
)

// Client is the Telegram side of the bot: it delivers replies, resolves
// attachment ids and feeds updates in either polling or webhook mode.
type Client struct {
	api *tgbotapi.BotAPI
}

var (
	_ usecase.Replier      = (*Client)(nil)
	_ usecase.FileResolver = (*Client)(nil)
)

func NewClient(token string, debug bool) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	api.Debug = debug

	logger.Info("Authorized on account %s", api.Self.UserName)
	return &Client{api: api}, nil
}

func (c *Client) Username() string {
	return c.api.Self.UserName
}

func (c *Client) Reply(ctx context.Context, r usecase.Reply) error {
	msg := tgbotapi.NewMessage(r.ChatID, r.Text)
	msg.ReplyToMessageID = r.ReplyTo
	if markup := ReplyMarkup(r); markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", r.ChatID, err)
	}
	return nil
}

// FileURL returns the direct download link of an uploaded file. The link
// embeds the bot token and expires after about an hour.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	return url, nil
}

func (c *Client) SendLocation(ctx context.Context, chatID int64, point entity.GeoPoint) error {
	if _, err := c.api.Send(tgbotapi.NewLocation(chatID, point.Latitude, point.Longitude)); err != nil {
		return fmt.Errorf("send location to %d: %w", chatID, err)
	}
	return nil
}

// SendMedia uploads a stored object. Images go out as photos, anything else
// as a document.
func (c *Client) SendMedia(ctx context.Context, chatID int64, name, contentType string, r io.Reader) error {
	file := tgbotapi.FileReader{Name: name, Reader: r}

	var msg tgbotapi.Chattable
	if strings.HasPrefix(contentType, "image/") {
		msg = tgbotapi.NewPhoto(chatID, file)
	} else {
		msg = tgbotapi.NewDocument(chatID, file)
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send %s to %d: %w", name, chatID, err)
	}
	return nil
}

// ReplyMarkup translates the affordance of a reply into a Telegram keyboard.
// A nil result leaves the current keyboard as it is.
func ReplyMarkup(r usecase.Reply) interface{} {
	switch r.Affordance {
	case entity.AffordanceCategoryKeyboard:
		columns := r.Columns
		if columns <= 0 {
			columns = 1
		}

		var rows [][]tgbotapi.KeyboardButton
		for start := 0; start < len(r.Choices); start += columns {
			end := start + columns
			if end > len(r.Choices) {
				end = len(r.Choices)
			}
			row := make([]tgbotapi.KeyboardButton, 0, end-start)
			for _, choice := range r.Choices[start:end] {
				row = append(row, tgbotapi.NewKeyboardButton(choice))
			}
			rows = append(rows, row)
		}

		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.ResizeKeyboard = true
		keyboard.OneTimeKeyboard = true
		return keyboard
	case entity.AffordanceRemove:
		return tgbotapi.NewRemoveKeyboard(true)
	default:
		return nil
	}
}
