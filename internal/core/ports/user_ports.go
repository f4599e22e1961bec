package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type SignupInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	// Login verifies the credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, error)
}

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
