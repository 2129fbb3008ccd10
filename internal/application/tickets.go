package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"ticketbot/internal/adapter/repository"
	"ticketbot/internal/domain/entity"
	"ticketbot/internal/infrastructure/firebase"
	"ticketbot/internal/infrastructure/storage"
	"ticketbot/internal/usecase"
	"ticketbot/pkg/config"
	"ticketbot/pkg/logger"
)

type TicketSource interface {
	ListOldest(ctx context.Context, limit int) ([]usecase.TicketWithMedia, error)
	OpenMedia(ctx context.Context, object entity.MediaObject) (io.ReadCloser, error)
}

// ListTickets prints the oldest tickets as JSON lines. With dir set, each
// ticket's media is copied to dir/<ticket id>/.
func ListTickets(ctx context.Context, cfg *config.Config, limit int, out io.Writer, dir string) error {
	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		return err
	}
	defer clients.Close()

	moderation := usecase.NewModerationUseCase(
		repository.NewFirestoreTicketRepository(clients.Firestore),
		storage.NewCloudStorageClient(clients.Bucket, clients.BucketName),
	)
	return ExportTickets(ctx, moderation, limit, out, dir)
}

func ExportTickets(ctx context.Context, source TicketSource, limit int, out io.Writer, dir string) error {
	tickets, err := source.ListOldest(ctx, limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, item := range tickets {
		if err := enc.Encode(item); err != nil {
			return err
		}
		if dir == "" {
			continue
		}
		for _, object := range item.Media {
			if err := saveMedia(ctx, source, filepath.Join(dir, item.Ticket.ID), object); err != nil {
				logger.Warn("Ticket %s: %v", item.Ticket.ID, err)
			}
		}
	}

	return nil
}

func saveMedia(ctx context.Context, source TicketSource, dir string, object entity.MediaObject) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	r, err := source.OpenMedia(ctx, object)
	if err != nil {
		return err
	}
	defer r.Close()

	target := filepath.Join(dir, path.Base(object.Path))
	f, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("copy %s: %w", object.Path, err)
	}
	return f.Close()
}
