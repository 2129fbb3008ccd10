package repository

import (
	"context"

	"ticketbot/internal/domain/entity"
)

type TicketRepository interface {
	// Create stores a new ticket and returns the id the store assigned.
	Create(ctx context.Context, ticket *entity.Ticket) (string, error)
	// ListOldest returns up to limit tickets ordered by createdAt ascending.
	ListOldest(ctx context.Context, limit int) ([]*entity.Ticket, error)
}
