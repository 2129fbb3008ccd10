package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/genproto/googleapis/type/latlng"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/pkg/errors"
	"ticketbot/pkg/logger"
)

const ticketsCollection = "tickets"

// ticketDocument is the stored layout; location is a native GeoPoint.
type ticketDocument struct {
	UserID      int64          `firestore:"userId"`
	Description string         `firestore:"description"`
	Location    *latlng.LatLng `firestore:"location"`
	Category    string         `firestore:"category"`
	Status      string         `firestore:"status"`
	CreatedAt   time.Time      `firestore:"createdAt"`
}

func toTicketDocument(t *entity.Ticket) ticketDocument {
	doc := ticketDocument{
		UserID:      t.UserID,
		Description: t.Description,
		Category:    string(t.Category),
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
	if t.Location != nil {
		doc.Location = &latlng.LatLng{Latitude: t.Location.Latitude, Longitude: t.Location.Longitude}
	}
	return doc
}

func (d ticketDocument) toEntity(id string) *entity.Ticket {
	t := &entity.Ticket{
		ID:          id,
		UserID:      d.UserID,
		Description: d.Description,
		Category:    entity.Category(d.Category),
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}
	if d.Location != nil {
		t.Location = &entity.GeoPoint{Latitude: d.Location.Latitude, Longitude: d.Location.Longitude}
	}
	return t
}

type firestoreTicketRepository struct {
	client *firestore.Client
}

func NewFirestoreTicketRepository(client *firestore.Client) repository.TicketRepository {
	return &firestoreTicketRepository{
		client: client,
	}
}

func (r *firestoreTicketRepository) Create(ctx context.Context, ticket *entity.Ticket) (string, error) {
	ref, _, err := r.client.Collection(ticketsCollection).Add(ctx, toTicketDocument(ticket))
	if err != nil {
		return "", errors.Internal("Failed to create ticket", err)
	}
	return ref.ID, nil
}

func (r *firestoreTicketRepository) ListOldest(ctx context.Context, limit int) ([]*entity.Ticket, error) {
	query := r.client.Collection(ticketsCollection).
		OrderBy("createdAt", firestore.Asc).
		Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var tickets []*entity.Ticket
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate tickets", err)
		}

		var data ticketDocument
		if err := doc.DataTo(&data); err != nil {
			logger.Error("Failed to parse ticket %s: %v", doc.Ref.ID, err)
			continue
		}
		tickets = append(tickets, data.toEntity(doc.Ref.ID))
	}

	return tickets, nil
}
