package usecase

import "ticketbot/internal/domain/entity"

type EventKind int

const (
	EventEnter EventKind = iota
	EventText
	EventPhoto
	EventLocation
	EventCategory
	EventCancel
	EventHelp
)

func (k EventKind) String() string {
	switch k {
	case EventEnter:
		return "enter"
	case EventText:
		return "text"
	case EventPhoto:
		return "photo"
	case EventLocation:
		return "location"
	case EventCategory:
		return "category"
	case EventCancel:
		return "cancel"
	case EventHelp:
		return "help"
	default:
		return "unknown"
	}
}

// DialogueEvent is one inbound update routed to the ticket dialogue.
type DialogueEvent struct {
	Kind           EventKind
	ConversationID int64
	UserID         int64
	MessageID      int

	Text string
	// PhotoFileIDs holds every size variant of a photo, smallest first.
	PhotoFileIDs []string
	Location     *entity.GeoPoint
	Category     entity.Category
}
