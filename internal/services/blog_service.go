package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bloglist/internal/models"
	"bloglist/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// CreateBlogInput is the payload for a new blog. Name is accepted as an
// alias of Author.
type CreateBlogInput struct {
	Title  string `json:"title" validate:"required"`
	URL    string `json:"url" validate:"required"`
	Author string `json:"author"`
	Name   string `json:"name"`
	Likes  *int   `json:"likes" validate:"omitempty,gte=0"`
}

// UpdateLikesInput is the payload for a likes update.
type UpdateLikesInput struct {
	Likes *int `json:"likes" validate:"required,gte=0"`
}

// BlogService handles business logic related to blogs.
type BlogService struct {
	repo      repositories.BlogRepository
	publisher EventPublisher
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewBlogService creates a new BlogService. publisher may be nil.
func NewBlogService(repo repositories.BlogRepository, publisher EventPublisher, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlogService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validate:  newValidator(),
	}
}

// ListBlogs retrieves all blogs with their owners.
func (s *BlogService) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	return blogs, nil
}

// GetBlog retrieves a single blog by its ID.
func (s *BlogService) GetBlog(ctx context.Context, id string) (*models.Blog, error) {
	blog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "blog", id)
	}
	return blog, nil
}

// CreateBlog stores a new blog owned by the caller. Likes default to 0.
func (s *BlogService) CreateBlog(ctx context.Context, identity Identity, in CreateBlogInput) (*models.Blog, error) {
	if identity.IsZero() {
		return nil, ErrUnauthorized
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:   in.Title,
		URL:     in.URL,
		Author:  in.Author,
		OwnerID: identity.UserID,
	}
	if blog.Author == "" {
		blog.Author = in.Name
	}
	if in.Likes != nil {
		blog.Likes = *in.Likes
	}

	if err := s.repo.Create(ctx, blog); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, EventBlogCreated, map[string]interface{}{
		"blogID":  blog.ID,
		"ownerID": blog.OwnerID,
		"title":   blog.Title,
	})
	return blog, nil
}

// UpdateLikes sets the like counter of a blog. Likes are a public counter,
// so no identity is required.
func (s *BlogService) UpdateLikes(ctx context.Context, id string, in UpdateLikesInput) (*models.Blog, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	blog, err := s.repo.UpdateLikes(ctx, id, *in.Likes)
	if err != nil {
		return nil, notFoundOr(err, "blog", id)
	}

	publishEvent(ctx, s.publisher, s.logger, EventBlogLiked, map[string]interface{}{
		"blogID": blog.ID,
		"likes":  blog.Likes,
	})
	return blog, nil
}

// DeleteBlog removes a blog after checking that identity owns it.
func (s *BlogService) DeleteBlog(ctx context.Context, identity Identity, id string) error {
	if identity.IsZero() {
		return ErrUnauthorized
	}
	blog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "blog", id)
	}
	if err := AuthorizeDelete(identity, blog); err != nil {
		s.logger.Info("blog deletion refused",
			"blog_id", id, "owner_id", blog.OwnerID, "caller_id", identity.UserID)
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "blog", id)
	}

	publishEvent(ctx, s.publisher, s.logger, EventBlogDeleted, map[string]interface{}{
		"blogID":  id,
		"ownerID": blog.OwnerID,
	})
	return nil
}

func notFoundOr(err error, kind, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s with ID %s", ErrNotFound, kind, id)
	}
	return fmt.Errorf("failed to access %s %s: %w", kind, id, err)
}
