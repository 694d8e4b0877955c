package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bloglist/internal/models"

	"github.com/google/uuid"
)

// memoryStore backs the in-memory repositories. Users and blogs share one
// lock so the owner check and the blog insert happen atomically.
type memoryStore struct {
	mu    sync.RWMutex
	seq   uint64
	users map[string]memoryRow[models.User]
	blogs map[string]memoryRow[models.Blog]
}

type memoryRow[T any] struct {
	seq uint64
	val T
}

// NewMemoryRepositories creates an in-memory UserRepository and
// BlogRepository backed by the same store.
func NewMemoryRepositories() (*MemoryUserRepository, *MemoryBlogRepository) {
	s := &memoryStore{
		users: make(map[string]memoryRow[models.User]),
		blogs: make(map[string]memoryRow[models.Blog]),
	}
	return &MemoryUserRepository{s: s}, &MemoryBlogRepository{s: s}
}

func (s *memoryStore) next() uint64 {
	s.seq++
	return s.seq
}

// blogsOf returns the blogs owned by userID in creation order. Callers hold the lock.
func (s *memoryStore) blogsOf(userID string) []models.Blog {
	rows := make([]memoryRow[models.Blog], 0)
	for _, row := range s.blogs {
		if row.val.OwnerID == userID {
			rows = append(rows, row)
		}
	}
	return sortedValues(rows)
}

func sortedValues[T any](rows []memoryRow[T]) []T {
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.val)
	}
	return out
}

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	s *memoryStore
}

// Create adds a new user, enforcing username uniqueness.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.users {
		if row.val.Username == user.Username {
			return fmt.Errorf("%w: username %s", ErrDuplicate, user.Username)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("%w: user ID %s", ErrDuplicate, user.ID)
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	stored.Blogs = nil
	r.s.users[user.ID] = memoryRow[models.User]{seq: r.s.next(), val: stored}
	return nil
}

// GetByID returns a user by its ID, with owned blogs.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user with ID %s", ErrNotFound, id)
	}
	user := row.val
	user.Blogs = r.s.blogsOf(id)
	return &user, nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.users {
		if row.val.Username == username {
			user := row.val
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user with username %s", ErrNotFound, username)
}

// List returns all users in registration order, with owned blogs.
func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]memoryRow[models.User], 0, len(r.s.users))
	for _, row := range r.s.users {
		rows = append(rows, row)
	}
	users := sortedValues(rows)
	for i := range users {
		users[i].Blogs = r.s.blogsOf(users[i].ID)
	}
	return users, nil
}

// MemoryBlogRepository is an in-memory implementation of BlogRepository.
type MemoryBlogRepository struct {
	s *memoryStore
}

// List returns all blogs in creation order with an owner projection.
func (r *MemoryBlogRepository) List(_ context.Context) ([]models.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]memoryRow[models.Blog], 0, len(r.s.blogs))
	for _, row := range r.s.blogs {
		rows = append(rows, row)
	}
	blogs := sortedValues(rows)
	for i := range blogs {
		if owner, ok := r.s.users[blogs[i].OwnerID]; ok {
			blogs[i].Owner = &models.User{
				ID:       owner.val.ID,
				Username: owner.val.Username,
				Name:     owner.val.Name,
			}
		}
	}
	return blogs, nil
}

// GetByID returns a blog by its ID.
func (r *MemoryBlogRepository) GetByID(_ context.Context, id string) (*models.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.blogs[id]
	if !ok {
		return nil, fmt.Errorf("%w: blog with ID %s", ErrNotFound, id)
	}
	blog := row.val
	return &blog, nil
}

// Create adds a new blog if its owner exists.
func (r *MemoryBlogRepository) Create(_ context.Context, blog *models.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[blog.OwnerID]; !ok {
		return fmt.Errorf("%w: owner with ID %s", ErrNotFound, blog.OwnerID)
	}
	if blog.ID == "" {
		blog.ID = uuid.New().String()
	}
	if _, ok := r.s.blogs[blog.ID]; ok {
		return fmt.Errorf("%w: blog ID %s", ErrDuplicate, blog.ID)
	}

	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	stored := *blog
	stored.Owner = nil
	r.s.blogs[blog.ID] = memoryRow[models.Blog]{seq: r.s.next(), val: stored}
	return nil
}

// UpdateLikes sets the likes of a blog.
func (r *MemoryBlogRepository) UpdateLikes(_ context.Context, id string, likes int) (*models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.blogs[id]
	if !ok {
		return nil, fmt.Errorf("%w: blog with ID %s", ErrNotFound, id)
	}
	row.val.Likes = likes
	row.val.UpdatedAt = time.Now()
	r.s.blogs[id] = row

	blog := row.val
	return &blog, nil
}

// Delete removes a blog by its ID.
func (r *MemoryBlogRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.blogs[id]; !ok {
		return fmt.Errorf("%w: blog with ID %s", ErrNotFound, id)
	}
	delete(r.s.blogs, id)
	return nil
}

var (
	_ UserRepository = (*MemoryUserRepository)(nil)
	_ BlogRepository = (*MemoryBlogRepository)(nil)
)
