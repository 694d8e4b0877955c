package repositories

import (
	"context"

	"bloglist/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create assigns an id when missing and stores the user. It returns
	// ErrDuplicate when the username is taken.
	Create(ctx context.Context, user *models.User) error
	// GetByID returns the user with its owned blogs loaded.
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// List returns every user with owned blogs loaded.
	List(ctx context.Context) ([]models.User, error)
}
