package repositories

import (
	"context"

	"bloglist/internal/models"
)

// BlogRepository defines the interface for blog data access.
type BlogRepository interface {
	// List returns every blog with its owner loaded, oldest first.
	List(ctx context.Context) ([]models.Blog, error)
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	// Create stores the blog after checking, in the same unit of work, that
	// its owner exists. A missing owner yields ErrNotFound.
	Create(ctx context.Context, blog *models.Blog) error
	// UpdateLikes sets the like counter and returns the updated blog.
	UpdateLikes(ctx context.Context, id string, likes int) (*models.Blog, error)
	Delete(ctx context.Context, id string) error
}
