package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

type restaurantService struct {
	repo ports.RestaurantRepository
}

func NewRestaurantService(repo ports.RestaurantRepository) ports.RestaurantService {
	return &restaurantService{
		repo: repo,
	}
}

func (s *restaurantService) List(ctx context.Context) ([]*domain.Restaurant, error) {
	return s.repo.List(ctx)
}

func (s *restaurantService) Menus(ctx context.Context, restaurantID uuid.UUID) (*domain.Restaurant, error) {
	return s.repo.GetWithMenus(ctx, restaurantID)
}

func (s *restaurantService) Create(ctx context.Context, input ports.CreateRestaurantInput) (*domain.Restaurant, error) {
	if input.Caller.Role != domain.RoleTeacher {
		return nil, domain.ErrForbidden
	}
	if err := validateRestaurantInput(input.Name, input.Description, input.Menus); err != nil {
		return nil, err
	}

	now := time.Now()
	restaurant := &domain.Restaurant{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
	}
	restaurant.Menus = buildMenus(restaurant.ID, input.Menus, now)

	if err := s.repo.Save(ctx, restaurant); err != nil {
		return nil, err
	}

	return restaurant, nil
}

func (s *restaurantService) Update(ctx context.Context, input ports.UpdateRestaurantInput) error {
	if input.Caller.Role != domain.RoleTeacher {
		return domain.ErrForbidden
	}
	if err := validateRestaurantInput(input.Name, input.Description, input.Menus); err != nil {
		return err
	}

	existing, err := s.repo.GetWithMenus(ctx, input.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	restaurant := &domain.Restaurant{
		ID:          existing.ID,
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   existing.CreatedAt,
	}
	restaurant.Menus = buildMenus(restaurant.ID, input.Menus, now)

	return s.repo.Update(ctx, restaurant)
}

func (s *restaurantService) Delete(ctx context.Context, id uuid.UUID, caller ports.Caller) error {
	if caller.Role != domain.RoleTeacher {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func validateRestaurantInput(name, description string, menus []ports.MenuInput) error {
	if name == "" {
		return fmt.Errorf("%w: restaurant name is required", domain.ErrValidation)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: restaurant name exceeds %d characters", domain.ErrValidation, maxNameLength)
	}
	if len(description) > maxDescriptionLength {
		return fmt.Errorf("%w: restaurant description exceeds %d characters", domain.ErrValidation, maxDescriptionLength)
	}
	if len(menus) == 0 {
		return fmt.Errorf("%w: at least one menu is required", domain.ErrValidation)
	}
	for _, m := range menus {
		if m.Name == "" {
			return fmt.Errorf("%w: menu name is required", domain.ErrValidation)
		}
		if len(m.Name) > maxNameLength {
			return fmt.Errorf("%w: menu name exceeds %d characters", domain.ErrValidation, maxNameLength)
		}
		if m.Price != nil && *m.Price < 0 {
			return fmt.Errorf("%w: menu price must not be negative", domain.ErrValidation)
		}
		if len(m.Description) > maxDescriptionLength {
			return fmt.Errorf("%w: menu description exceeds %d characters", domain.ErrValidation, maxDescriptionLength)
		}
	}
	return nil
}

func buildMenus(restaurantID uuid.UUID, inputs []ports.MenuInput, now time.Time) []domain.Menu {
	menus := make([]domain.Menu, 0, len(inputs))
	for _, m := range inputs {
		menus = append(menus, domain.Menu{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			Name:         m.Name,
			Price:        m.Price,
			Description:  m.Description,
			CreatedAt:    now,
		})
	}
	return menus
}
