package usecase

import (
	"context"

	"ticketbot/internal/domain/entity"
)

// Reply is an outbound chat message together with the keyboard state it
// should leave behind.
type Reply struct {
	ChatID     int64
	Text       string
	ReplyTo    int
	Affordance entity.Affordance
	Choices    []string
	Columns    int
}

// Replier delivers replies through the chat transport.
type Replier interface {
	Reply(ctx context.Context, reply Reply) error
}

// FileResolver turns a transport attachment id into a time-limited
// download URL.
type FileResolver interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

// TicketSubmitter persists a finished ticket and schedules its media.
type TicketSubmitter interface {
	Submit(ctx context.Context, ticket entity.Ticket, mediaRefs []string) (string, error)
}
