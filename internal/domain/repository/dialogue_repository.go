package repository

import (
	"context"

	"ticketbot/internal/domain/entity"
)

// DialogueRepository keeps in-progress dialogues keyed by conversation.
// Implementations may evict idle entries; a missing entry means Idle.
type DialogueRepository interface {
	Get(ctx context.Context, conversationID int64) (*entity.DialogueState, bool, error)
	Save(ctx context.Context, state *entity.DialogueState) error
	Delete(ctx context.Context, conversationID int64) error
}
