package services

import (
	"context"
	"errors"
	"fmt"

	"bloglist/internal/workpool"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the salt round count used for stored passwords.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// PasswordHasher salts and hashes passwords with bcrypt on a worker pool, so
// an expensive hash never runs on the request goroutine.
type PasswordHasher struct {
	pool *workpool.Pool
	cost int
}

// NewPasswordHasher creates a PasswordHasher running on pool.
func NewPasswordHasher(pool *workpool.Pool, cost int) *PasswordHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{pool: pool, cost: cost}
}

// Hash returns the salted bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	hash, err := workpool.Do(ctx, h.pool, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", passwordTooLong()
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Mismatches, malformed hashes
// and cancelled contexts all yield false.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	ok, err := workpool.Do(ctx, h.pool, func() (bool, error) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil, nil
	})
	return err == nil && ok
}

func passwordTooLong() error {
	return fmt.Errorf("%w: `password` must be at most %d bytes", ErrValidation, MaxPasswordBytes)
}
