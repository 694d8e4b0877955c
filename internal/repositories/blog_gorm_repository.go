package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bloglist/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMBlogRepository is a GORM implementation of BlogRepository.
type GORMBlogRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGORMBlogRepository creates a new instance of GORMBlogRepository.
func NewGORMBlogRepository(db *gorm.DB, logger *slog.Logger) *GORMBlogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &GORMBlogRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves all blogs with a projection of their owner.
func (r *GORMBlogRepository) List(ctx context.Context) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "name")
		}).
		Order("created_at ASC, id ASC").
		Find(&blogs).
		Error
	if err != nil {
		return nil, logError(r.logger, "blog_repo_list_failed", err)
	}
	return blogs, nil
}

// GetByID retrieves a single blog by its ID from the database.
func (r *GORMBlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: blog with ID %s", ErrNotFound, id)
		}
		return nil, logError(r.logger, "blog_repo_get_by_id_failed", err, "blog_id", id)
	}
	return &blog, nil
}

// Create inserts the blog inside a transaction that first confirms the owner
// exists, so no blog can reference a missing user.
func (r *GORMBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if blog.ID == "" {
		blog.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&models.User{}).Where("id = ?", blog.OwnerID).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			return fmt.Errorf("%w: owner with ID %s", ErrNotFound, blog.OwnerID)
		}
		return tx.Omit(clause.Associations).Create(blog).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return logError(r.logger, "blog_repo_create_failed", err, "owner_id", blog.OwnerID)
	}
	return nil
}

// UpdateLikes updates only the likes column of a blog.
func (r *GORMBlogRepository) UpdateLikes(ctx context.Context, id string, likes int) (*models.Blog, error) {
	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).Update("likes", likes)
	if res.Error != nil {
		return nil, logError(r.logger, "blog_repo_update_likes_failed", res.Error, "blog_id", id)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: blog with ID %s", ErrNotFound, id)
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a blog by its ID from the database.
func (r *GORMBlogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	if res.Error != nil {
		return logError(r.logger, "blog_repo_delete_failed", res.Error, "blog_id", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: blog with ID %s", ErrNotFound, id)
	}
	return nil
}

var _ BlogRepository = (*GORMBlogRepository)(nil)
