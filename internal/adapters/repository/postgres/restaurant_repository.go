package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

type restaurantRepository struct {
	db *sql.DB
}

func NewRestaurantRepository(db *sql.DB) ports.RestaurantRepository {
	return &restaurantRepository{
		db: db,
	}
}

func (r *restaurantRepository) List(ctx context.Context) ([]*domain.Restaurant, error) {
	query := `
		SELECT id, name, description, created_at
		FROM restaurants
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []*domain.Restaurant
	for rows.Next() {
		var restaurant domain.Restaurant
		if err := rows.Scan(&restaurant.ID, &restaurant.Name, &restaurant.Description, &restaurant.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, &restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *restaurantRepository) GetWithMenus(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	query := `
		SELECT id, name, description, created_at
		FROM restaurants
		WHERE id = $1
	`
	var restaurant domain.Restaurant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&restaurant.ID, &restaurant.Name, &restaurant.Description, &restaurant.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	menus, err := r.fetchMenus(ctx, restaurant.ID)
	if err != nil {
		return nil, err
	}
	restaurant.Menus = menus

	return &restaurant, nil
}

func (r *restaurantRepository) Save(ctx context.Context, restaurant *domain.Restaurant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO restaurants (id, name, description)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, query, restaurant.ID, restaurant.Name, restaurant.Description)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	if err := insertMenus(ctx, tx, restaurant.Menus); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE restaurants
		SET name = $2, description = $3
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, query, restaurant.ID, restaurant.Name, restaurant.Description)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}

	// The menu set is replaced wholesale on every edit.
	_, err = tx.ExecContext(ctx, `DELETE FROM menus WHERE restaurant_id = $1`, restaurant.ID)
	if err != nil {
		return fmt.Errorf("failed to delete menus: %w", err)
	}

	if err := insertMenus(ctx, tx, restaurant.Menus); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *restaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Menus cascade via FK.
	_, err := r.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	return nil
}

func (r *restaurantRepository) fetchMenus(ctx context.Context, restaurantID uuid.UUID) ([]domain.Menu, error) {
	query := `
		SELECT id, restaurant_id, name, price, description, created_at
		FROM menus
		WHERE restaurant_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menus: %w", err)
	}
	defer rows.Close()

	var menus []domain.Menu
	for rows.Next() {
		var menu domain.Menu
		var price sql.NullInt64
		if err := rows.Scan(&menu.ID, &menu.RestaurantID, &menu.Name, &price, &menu.Description, &menu.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		if price.Valid {
			menu.Price = &price.Int64
		}
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menus: %w", err)
	}
	return menus, nil
}

func insertMenus(ctx context.Context, tx *sql.Tx, menus []domain.Menu) error {
	query := `
		INSERT INTO menus (id, restaurant_id, name, price, description)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare menu statement: %w", err)
	}
	defer stmt.Close()

	for _, menu := range menus {
		var price sql.NullInt64
		if menu.Price != nil {
			price = sql.NullInt64{Int64: *menu.Price, Valid: true}
		}
		_, err = stmt.ExecContext(ctx, menu.ID, menu.RestaurantID, menu.Name, price, menu.Description)
		if err != nil {
			return fmt.Errorf("failed to insert menu: %w", err)
		}
	}
	return nil
}
