package usecase

import (
	"context"
	"io"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/internal/domain/service"
	"ticketbot/pkg/errors"
	"ticketbot/pkg/logger"
)

type ModerationUseCase struct {
	ticketRepo repository.TicketRepository
	storage    service.MediaStorage
}

func NewModerationUseCase(ticketRepo repository.TicketRepository, storage service.MediaStorage) *ModerationUseCase {
	return &ModerationUseCase{
		ticketRepo: ticketRepo,
		storage:    storage,
	}
}

type TicketWithMedia struct {
	Ticket *entity.Ticket       `json:"ticket"`
	Media  []entity.MediaObject `json:"media"`
}

// ListOldest returns the limit oldest tickets with the objects stored under
// their media folder. A ticket whose folder cannot be listed is returned
// without media.
func (uc *ModerationUseCase) ListOldest(ctx context.Context, limit int) ([]TicketWithMedia, error) {
	if limit <= 0 {
		return nil, errors.BadRequest("Limit must be positive", nil)
	}

	tickets, err := uc.ticketRepo.ListOldest(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]TicketWithMedia, 0, len(tickets))
	for _, t := range tickets {
		media, err := uc.storage.List(ctx, entity.MediaPrefix(t.ID))
		if err != nil {
			logger.Warn("Ticket %s: list media: %v", t.ID, err)
		}
		result = append(result, TicketWithMedia{Ticket: t, Media: media})
	}

	return result, nil
}

// OpenMedia streams one stored object back to the caller, who must close it.
func (uc *ModerationUseCase) OpenMedia(ctx context.Context, object entity.MediaObject) (io.ReadCloser, error) {
	r, err := uc.storage.Open(ctx, object)
	if err != nil {
		return nil, errors.Internal("Failed to open media", err)
	}
	return r, nil
}
