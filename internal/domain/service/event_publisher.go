package service

import "context"

const (
	EventTicketCreated       = "ticket.created"
	EventTicketMediaUploaded = "ticket.media_uploaded"
	EventTicketMediaFailed   = "ticket.media_failed"
)

// TicketEventPublisher is best-effort: it never reports failures to callers.
type TicketEventPublisher interface {
	PublishTicketEvent(ctx context.Context, event string, payload map[string]interface{})
}
