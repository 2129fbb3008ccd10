package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/usecase"
)

// Route tells the router which handler owns an inbound message.
type Route int

const (
	RouteIgnore Route = iota
	RouteDialogue
	RouteStart
	RouteModerate
)

// Classify maps a Telegram message onto a route and, for the dialogue route,
// the event the ticket dialogue understands. Edited messages only ever
// update the description.
func Classify(msg *tgbotapi.Message, edited bool) (Route, usecase.DialogueEvent) {
	if msg == nil || msg.Chat == nil {
		return RouteIgnore, usecase.DialogueEvent{}
	}

	ev := usecase.DialogueEvent{
		ConversationID: msg.Chat.ID,
		MessageID:      msg.MessageID,
	}
	if msg.From != nil {
		ev.UserID = msg.From.ID
	}

	if edited {
		if strings.TrimSpace(msg.Text) == "" {
			return RouteIgnore, ev
		}
		ev.Kind = usecase.EventText
		ev.Text = msg.Text
		return RouteDialogue, ev
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return RouteStart, ev
		case "mod":
			return RouteModerate, ev
		case "add":
			ev.Kind = usecase.EventEnter
		case "cancel":
			ev.Kind = usecase.EventCancel
		case "help":
			ev.Kind = usecase.EventHelp
		default:
			return RouteIgnore, ev
		}
		return RouteDialogue, ev
	}

	switch {
	case msg.Location != nil:
		ev.Kind = usecase.EventLocation
		ev.Location = &entity.GeoPoint{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}
	case len(msg.Photo) > 0:
		ev.Kind = usecase.EventPhoto
		ev.PhotoFileIDs = make([]string, 0, len(msg.Photo))
		for _, size := range msg.Photo {
			ev.PhotoFileIDs = append(ev.PhotoFileIDs, size.FileID)
		}
	case strings.TrimSpace(msg.Text) != "":
		if category, ok := entity.CategoryByLabel(msg.Text); ok {
			ev.Kind = usecase.EventCategory
			ev.Category = category
		} else {
			ev.Kind = usecase.EventText
			ev.Text = msg.Text
		}
	default:
		return RouteIgnore, ev
	}

	return RouteDialogue, ev
}
