package bot

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/usecase"
	"ticketbot/pkg/logger"
)

type ModerationHandler struct {
	moderation *usecase.ModerationUseCase
	messenger  Messenger
	limit      int
}

func NewModerationHandler(moderation *usecase.ModerationUseCase, messenger Messenger, limit int) *ModerationHandler {
	return &ModerationHandler{
		moderation: moderation,
		messenger:  messenger,
		limit:      limit,
	}
}

// Present sends the oldest tickets to chatID: a summary, the location and
// every stored photo of each one. A media item that cannot be sent is
// skipped.
func (h *ModerationHandler) Present(ctx context.Context, chatID int64) error {
	tickets, err := h.moderation.ListOldest(ctx, h.limit)
	if err != nil {
		return err
	}

	if len(tickets) == 0 {
		return h.messenger.Reply(ctx, usecase.Reply{ChatID: chatID, Text: usecase.MsgNoTickets})
	}

	for _, item := range tickets {
		if err := h.messenger.Reply(ctx, usecase.Reply{ChatID: chatID, Text: Summary(item)}); err != nil {
			return err
		}

		if loc := item.Ticket.Location; loc != nil {
			if err := h.messenger.SendLocation(ctx, chatID, *loc); err != nil {
				return err
			}
		}

		for _, object := range item.Media {
			h.sendMedia(ctx, chatID, object)
		}
	}

	return nil
}

func (h *ModerationHandler) sendMedia(ctx context.Context, chatID int64, object entity.MediaObject) {
	r, err := h.moderation.OpenMedia(ctx, object)
	if err != nil {
		logger.Warn("Open %s: %v", object.Path, err)
		return
	}
	defer r.Close()

	if err := h.messenger.SendMedia(ctx, chatID, path.Base(object.Path), object.ContentType, r); err != nil {
		logger.Warn("Send %s: %v", object.Path, err)
	}
}

// Summary is the text block shown for one ticket.
func Summary(item usecase.TicketWithMedia) string {
	t := item.Ticket

	var b strings.Builder
	fmt.Fprintf(&b, "#%s %s\n", t.ID, t.Category.Label())
	fmt.Fprintf(&b, "%s\n", t.Description)
	fmt.Fprintf(&b, "From user %d at %s", t.UserID, t.CreatedAt.UTC().Format(time.RFC3339))
	if n := len(item.Media); n > 0 {
		fmt.Fprintf(&b, ", %d photo(s)", n)
	}
	return b.String()
}
