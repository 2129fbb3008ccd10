package repository

import (
	"context"

	"ticketbot/internal/domain/entity"
)

type UserRepository interface {
	// Save merges the profile fields, leaving an assigned role untouched.
	Save(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}
