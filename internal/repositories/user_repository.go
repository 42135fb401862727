package repositories

import (
	"context"

	"harvest/internal/models"
)

// UserFilter narrows a user listing.
type UserFilter struct {
	Role   string
	Search string
	Page
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Count(ctx context.Context, role string) (int64, error)
}
