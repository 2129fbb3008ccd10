package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/internal/domain/service"
	"ticketbot/pkg/errors"
	"ticketbot/pkg/logger"
)

// SubmissionUseCase persists finished tickets and copies their photos into
// object storage in the background.
type SubmissionUseCase struct {
	ticketRepo repository.TicketRepository
	storage    service.MediaStorage
	fetcher    service.MediaFetcher
	publisher  service.TicketEventPublisher
	validate   *validator.Validate
	newID      func() string
	tasks      sync.WaitGroup
}

var _ TicketSubmitter = (*SubmissionUseCase)(nil)

func NewSubmissionUseCase(
	ticketRepo repository.TicketRepository,
	storage service.MediaStorage,
	fetcher service.MediaFetcher,
	publisher service.TicketEventPublisher,
) *SubmissionUseCase {
	v := validator.New()
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return entity.Category(fl.Field().String()).Valid()
	})

	return &SubmissionUseCase{
		ticketRepo: ticketRepo,
		storage:    storage,
		fetcher:    fetcher,
		publisher:  publisher,
		validate:   v,
		newID:      func() string { return uuid.New().String() },
	}
}

// Submit writes the ticket and returns its id as soon as the store assigned
// one. Media transfer is started afterwards and never awaited here; its
// failures are only logged.
func (uc *SubmissionUseCase) Submit(ctx context.Context, ticket entity.Ticket, mediaRefs []string) (string, error) {
	if err := uc.validate.Struct(ticket); err != nil {
		return "", errors.IncompleteTicket(err)
	}

	id, err := uc.ticketRepo.Create(ctx, &ticket)
	if err != nil {
		if errors.Is(err, "INTERNAL_ERROR") {
			return "", err
		}
		return "", errors.Internal("Failed to create ticket", err)
	}
	ticket.ID = id

	// Background work must outlive the update that triggered it.
	detached := context.WithoutCancel(ctx)

	uc.spawn(func() {
		uc.publish(detached, service.EventTicketCreated, map[string]interface{}{
			"ticket_id":   id,
			"user_id":     ticket.UserID,
			"category":    string(ticket.Category),
			"media_count": len(mediaRefs),
			"created_at":  ticket.CreatedAt,
		})
	})

	for _, ref := range mediaRefs {
		ref := ref
		uc.spawn(func() {
			asset, err := uc.ingest(detached, id, ref)
			if err != nil {
				logger.LogMediaError(id, ref, err)
				uc.publish(detached, service.EventTicketMediaFailed, map[string]interface{}{
					"ticket_id": id,
					"error":     err.Error(),
				})
				return
			}
			logger.Info("Ticket %s: stored %s (%s, %d bytes)", id, asset.Path(), asset.ContentType, asset.Size)
			uc.publish(detached, service.EventTicketMediaUploaded, map[string]interface{}{
				"ticket_id":    id,
				"path":         asset.Path(),
				"content_type": asset.ContentType,
			})
		})
	}

	return id, nil
}

// ingest downloads one locator and stores it under the ticket's folder. The
// extension comes from the bytes, never from the locator.
func (uc *SubmissionUseCase) ingest(ctx context.Context, ticketID, sourceURL string) (entity.MediaAsset, error) {
	data, err := uc.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return entity.MediaAsset{}, err
	}
	if len(data) == 0 {
		return entity.MediaAsset{}, fmt.Errorf("empty media body")
	}

	mt := mimetype.Detect(data)
	asset := entity.MediaAsset{
		SourceURL:   sourceURL,
		TicketID:    ticketID,
		GeneratedID: uc.newID(),
		ContentType: mt.String(),
		Extension:   mt.Extension(),
		Size:        len(data),
	}
	if asset.Extension == "" {
		asset.Extension = ".bin"
	}

	if err := uc.storage.Write(ctx, asset.Path(), data, asset.ContentType); err != nil {
		return entity.MediaAsset{}, err
	}
	return asset, nil
}

func (uc *SubmissionUseCase) publish(ctx context.Context, event string, payload map[string]interface{}) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.PublishTicketEvent(ctx, event, payload)
}

func (uc *SubmissionUseCase) spawn(task func()) {
	uc.tasks.Add(1)
	go func() {
		defer uc.tasks.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Background submission task panicked: %v", r)
			}
		}()
		task()
	}()
}

// Drain waits for background transfers, or until ctx is done.
func (uc *SubmissionUseCase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
