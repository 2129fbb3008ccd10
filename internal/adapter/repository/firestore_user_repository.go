package repository

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) doc(id int64) *firestore.DocumentRef {
	return r.client.Collection("users").Doc(strconv.FormatInt(id, 10))
}

func (r *firestoreUserRepository) Save(ctx context.Context, user *entity.User) error {
	updatedAt := user.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	// Role is assigned by hand in the console and must survive /start.
	updateData := map[string]interface{}{
		"first_name": user.FirstName,
		"is_bot":     user.IsBot,
		"updatedAt":  updatedAt,
	}
	if user.LastName != "" {
		updateData["last_name"] = user.LastName
	}
	if user.Username != "" {
		updateData["username"] = user.Username
	}
	if user.LanguageCode != "" {
		updateData["language_code"] = user.LanguageCode
	}

	if _, err := r.doc(user.ID).Set(ctx, updateData, firestore.MergeAll); err != nil {
		return errors.Internal("Failed to save user", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	doc, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = id

	return &user, nil
}
