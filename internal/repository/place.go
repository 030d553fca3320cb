package repository

import (
	"context"

	"places-api/internal/domain"
)

// PlaceRepository exposes persistence operations for Place aggregates.
type PlaceRepository interface {
	Create(ctx context.Context, place *domain.Place) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Place, error)
	// GetWithCreator loads the place together with the full record of its creator.
	GetWithCreator(ctx context.Context, id int64) (*domain.Place, *domain.User, error)
	ListByCreator(ctx context.Context, creatorID int64) ([]domain.Place, error)
	Update(ctx context.Context, place *domain.Place) error
	Delete(ctx context.Context, id int64) error
}
