package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"bloglist/internal/logging"
	"bloglist/internal/models"
	"bloglist/internal/repositories"
	"bloglist/internal/services"
	"bloglist/internal/workpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newHasher() *services.PasswordHasher {
	return services.NewPasswordHasher(workpool.New(4), bcrypt.MinCost)
}

func newAuthService(repo repositories.UserRepository, pub services.EventPublisher) *services.AuthService {
	return services.NewAuthService(
		repo,
		newHasher(),
		services.NewTokenService(testJWTSecret, time.Hour),
		pub,
		logging.Discard(),
	)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockPub := new(MockPublisher)
	authService := newAuthService(mockRepo, mockPub)

	in := services.RegisterInput{Username: "testuser", Name: "Test User", Password: "password123"}

	mockRepo.On("GetByUsername", mock.Anything, "testuser").
		Return(nil, fmt.Errorf("%w: user with username testuser", repositories.ErrNotFound)).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*models.User)
			u.ID = "user-1"
		}).
		Return(nil).Once()
	mockPub.On("Publish", mock.Anything, services.EventUserRegistered, mock.Anything).Return(nil).Once()

	user, err := authService.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.NotEqual(t, in.Password, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)))
	assert.Empty(t, user.BlogIDs())
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(&models.User{ID: "user-1"}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "username 'testuser' already taken")
	mockRepo.AssertExpectations(t)

	// Lost a race with a concurrent registration
	mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("%w: username testuser", repositories.ErrDuplicate)).Once()
	_, err = authService.Register(ctx, in)
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)

	// Store failure is not a validation problem
	mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(nil, errors.New("connection refused")).Once()
	_, err = authService.Register(ctx, in)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrValidation)
	assert.NotErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterPublishFailureIsNotFatal(t *testing.T) {
	users, _ := repositories.NewMemoryRepositories()
	mockPub := new(MockPublisher)
	mockPub.On("Publish", mock.Anything, services.EventUserRegistered, mock.Anything).
		Return(errors.New("broker down")).Once()

	authService := newAuthService(users, mockPub)
	user, err := authService.Register(context.Background(), services.RegisterInput{Username: "tester", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	mockPub.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		in       services.RegisterInput
		wantErr  bool
		contains string
	}{
		{"password too short", services.RegisterInput{Username: "alice", Password: "ab"}, true, "`password` must be at least 3"},
		{"empty password", services.RegisterInput{Username: "alice"}, true, "`password` is required"},
		{"password of three", services.RegisterInput{Username: "alice", Password: "abc"}, false, ""},
		{"long password", services.RegisterInput{Username: "alice", Password: strings.Repeat("x", 40)}, false, ""},
		{"password of 72 bytes", services.RegisterInput{Username: "alice", Password: strings.Repeat("a", 72)}, false, ""},
		{"password over 72 bytes", services.RegisterInput{Username: "alice", Password: strings.Repeat("a", 73)}, true, "at most 72 bytes"},
		{"multibyte password over 72 bytes", services.RegisterInput{Username: "alice", Password: strings.Repeat("é", 37)}, true, "at most 72 bytes"},
		{"username too short", services.RegisterInput{Username: "al", Password: "secret"}, true, "`username` must be at least 3"},
		{"missing username", services.RegisterInput{Password: "secret"}, true, "`username` is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, _ := repositories.NewMemoryRepositories()
			authService := newAuthService(users, nil)

			user, err := authService.Register(context.Background(), tt.in)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.in.Username, user.Username)
				return
			}
			assert.ErrorIs(t, err, services.ErrValidation)
			assert.Contains(t, err.Error(), tt.contains)

			all, err := users.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestAuthService_ConcurrentDuplicateRegistration(t *testing.T) {
	users, _ := repositories.NewMemoryRepositories()
	authService := newAuthService(users, nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = authService.Register(context.Background(), services.RegisterInput{
				Username: "tester",
				Password: "secret",
			})
		}(i)
	}
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, services.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:           "user-123",
		Username:     "testuser",
		Name:         "Test User",
		PasswordHash: string(hashedPassword),
	}

	// Successful login
	mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(user, nil).Once()
	res, err := authService.Login(ctx, services.LoginInput{Username: "testuser", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "testuser", res.Username)
	assert.Equal(t, "Test User", res.Name)

	userID, err := services.NewTokenService(testJWTSecret, time.Hour).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(user, nil).Once()
	res, err = authService.Login(ctx, services.LoginInput{Username: "testuser", Password: "wrongpassword"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	mockRepo.AssertExpectations(t)

	// Unknown user gets the same answer
	mockRepo.On("GetByUsername", mock.Anything, "nonexistentuser").
		Return(nil, fmt.Errorf("%w: user with username nonexistentuser", repositories.ErrNotFound)).Once()
	_, err = authService.Login(ctx, services.LoginInput{Username: "nonexistentuser", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Missing fields
	_, err = authService.Login(ctx, services.LoginInput{Username: "testuser"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_FindByUsernameAndVerifyPassword(t *testing.T) {
	ctx := context.Background()
	users, _ := repositories.NewMemoryRepositories()
	authService := newAuthService(users, nil)

	missing, err := authService.FindByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = authService.Register(ctx, services.RegisterInput{Username: "tester", Password: "secret"})
	require.NoError(t, err)

	found, err := authService.FindByUsername(ctx, "tester")
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.True(t, authService.VerifyPassword(ctx, "secret", found.PasswordHash))
	assert.False(t, authService.VerifyPassword(ctx, "Secret", found.PasswordHash))
	assert.False(t, authService.VerifyPassword(ctx, "secret", "not-a-bcrypt-hash"))
}

func TestPasswordHasher_TooLong(t *testing.T) {
	_, err := newHasher().Hash(context.Background(), strings.Repeat("a", services.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, services.ErrValidation)
}
