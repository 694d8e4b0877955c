package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bloglist/internal/models"
	"bloglist/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Name     string `json:"name" validate:"max=255"`
	Password string `json:"password" validate:"required,min=3"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// AuthService is the credential store: it registers users with salted
// password hashes and exchanges valid credentials for bearer tokens.
type AuthService struct {
	userRepo  repositories.UserRepository
	hasher    *PasswordHasher
	tokens    *TokenService
	publisher EventPublisher
	logger    *slog.Logger
	validate  *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. publisher may be nil.
func NewAuthService(
	userRepo repositories.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenService,
	publisher EventPublisher,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
		validate:  newValidator(),
	}
}

// Register validates the input, hashes the password and stores the user.
// A taken username yields ErrConflict, bad input ErrValidation.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	// validator counts runes; bcrypt's limit is in bytes.
	if len(in.Password) > MaxPasswordBytes {
		return nil, passwordTooLong()
	}

	existing, err := s.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username '%s' already taken", ErrConflict, in.Username)
	}

	passwordHash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: passwordHash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index settles races between concurrent registrations.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username '%s' already taken", ErrConflict, in.Username)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	publishEvent(ctx, s.publisher, s.logger, EventUserRegistered, map[string]interface{}{
		"userID":   user.ID,
		"username": user.Username,
	})
	return user, nil
}

// FindByUsername returns the user, or nil when no such user exists.
func (s *AuthService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// VerifyPassword reports whether plaintext matches passwordHash. It never
// fails on mismatch.
func (s *AuthService) VerifyPassword(ctx context.Context, plaintext, passwordHash string) bool {
	return s.hasher.Verify(ctx, plaintext, passwordHash)
}

// Login checks the credentials and returns a signed token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a comparison so unknown usernames cost the same as bad passwords.
		s.VerifyPassword(ctx, in.Password, s.timingHash())
		return nil, ErrInvalidCredentials
	}
	if !s.VerifyPassword(ctx, in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// ListUsers returns every user with the blogs they own.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// timingHash is computed once, detached from any request so a cancelled
// request cannot leave it empty.
func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.Background(), "not-a-real-password")
		if err != nil {
			s.logger.Warn("failed to prepare timing hash", "error", err.Error())
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
