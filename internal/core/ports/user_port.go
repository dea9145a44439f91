package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserDetails(ctx context.Context, userID uuid.UUID, details domain.UserDetails) (*domain.User, error)
	DeleteUserByEmail(ctx context.Context, email string) error
}
