package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bloglist/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB, logger *slog.Logger) *GORMUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &GORMUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Blogs").Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s", ErrDuplicate, user.Username)
		}
		return logError(r.logger, "user_repo_create_failed", err, "username", user.Username)
	}
	return nil
}

// GetByID retrieves a user and the blogs it owns.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Blogs", oldestFirst).
		First(&user, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with ID %s", ErrNotFound, id)
		}
		return nil, logError(r.logger, "user_repo_get_by_id_failed", err, "user_id", id)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with username %s", ErrNotFound, username)
		}
		return nil, logError(r.logger, "user_repo_get_by_username_failed", err, "username", username)
	}
	return &user, nil
}

// List retrieves all users with their blogs.
func (r *GORMUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Blogs", oldestFirst).
		Order("created_at ASC, id ASC").
		Find(&users).
		Error
	if err != nil {
		return nil, logError(r.logger, "user_repo_list_failed", err)
	}
	return users, nil
}

// oldestFirst orders by creation time; id breaks ties between rows created in
// the same clock tick.
func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func logError(logger *slog.Logger, event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+4)
	fields = append(fields, "event", event, "error", err.Error())
	fields = append(fields, attrs...)
	logger.Error("repository operation failed", fields...)
	return fmt.Errorf("%s: %w", event, err)
}

var _ UserRepository = (*GORMUserRepository)(nil)
