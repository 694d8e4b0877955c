package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloglist/internal/repositories"
	"bloglist/internal/workpool"
)

// Identity is an authenticated caller.
type Identity struct {
	UserID   string
	Username string
}

// IsZero reports whether no identity was established.
func (i Identity) IsZero() bool { return i.UserID == "" }

// Guard turns an Authorization header into an Identity.
type Guard struct {
	tokens *TokenService
	users  repositories.UserRepository
	pool   *workpool.Pool
}

// NewGuard creates a Guard. Token verification runs on pool.
func NewGuard(tokens *TokenService, users repositories.UserRepository, pool *workpool.Pool) *Guard {
	return &Guard{tokens: tokens, users: users, pool: pool}
}

// Authenticate validates an Authorization header value of the form
// "bearer <token>" (scheme is case-insensitive) and resolves the user it
// names. Errors: ErrMissingToken, ErrInvalidToken, ErrUnknownUser.
func (g *Guard) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	tokenString, err := BearerToken(authorization)
	if err != nil {
		return Identity{}, err
	}

	userID, err := workpool.Do(ctx, g.pool, func() (string, error) {
		return g.tokens.Verify(tokenString)
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return Identity{}, err
		}
		return Identity{}, fmt.Errorf("failed to verify token: %w", err)
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, fmt.Errorf("failed to resolve token user: %w", err)
	}
	return Identity{UserID: user.ID, Username: user.Username}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(strings.TrimSpace(authorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("%w: authorization header format must be 'bearer <token>'", ErrMissingToken)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
