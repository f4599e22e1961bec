package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
)

type RestaurantRepository interface {
	List(ctx context.Context) ([]*domain.Restaurant, error)
	GetWithMenus(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	// Save inserts the restaurant and its menus in one transaction.
	Save(ctx context.Context, restaurant *domain.Restaurant) error
	// Update rewrites the restaurant and replaces its menu set in one
	// transaction.
	Update(ctx context.Context, restaurant *domain.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MenuInput struct {
	Name        string
	Price       *int64
	Description string
}

type CreateRestaurantInput struct {
	Name        string
	Description string
	Menus       []MenuInput
	Caller      Caller
}

type UpdateRestaurantInput struct {
	ID          uuid.UUID
	Name        string
	Description string
	Menus       []MenuInput
	Caller      Caller
}

type RestaurantService interface {
	List(ctx context.Context) ([]*domain.Restaurant, error)
	Menus(ctx context.Context, restaurantID uuid.UUID) (*domain.Restaurant, error)
	Create(ctx context.Context, input CreateRestaurantInput) (*domain.Restaurant, error)
	Update(ctx context.Context, input UpdateRestaurantInput) error
	Delete(ctx context.Context, id uuid.UUID, caller Caller) error
}
