package repository

import (
	"context"

	"places-api/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// AddPlace appends placeID to the end of the user's place list.
	AddPlace(ctx context.Context, userID, placeID int64) error
	// RemovePlace drops placeID from the user's place list.
	RemovePlace(ctx context.Context, userID, placeID int64) error
}
