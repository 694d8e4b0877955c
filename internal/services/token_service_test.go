package services_test

import (
	"strings"
	"testing"
	"time"

	"bloglist/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	// The payload carries {id, iat, exp}.
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test_jwt_secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["id"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestTokenService_Deterministic(t *testing.T) {
	fixed := time.Now().Truncate(time.Second)
	tokens := services.NewTokenService("secret", time.Hour).WithClock(func() time.Time { return fixed })

	a, err := tokens.Issue("u1")
	require.NoError(t, err)
	b, err := tokens.Issue("u1")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := tokens.Issue("u2")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestTokenService_NoExpiry(t *testing.T) {
	tokens := services.NewTokenService("secret", 0)

	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.NotContains(t, claims, "exp")

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestTokenService_VerifyFailures(t *testing.T) {
	tokens := services.NewTokenService("right-secret", time.Hour)

	t.Run("malformed", func(t *testing.T) {
		_, err := tokens.Verify("invalid.token.string")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := services.NewTokenService("wrong-secret", time.Hour).Issue("u1")
		require.NoError(t, err)
		_, err = tokens.Verify(other)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := tokens.Issue("u1")
		require.NoError(t, err)
		forged, err := services.NewTokenService("right-secret", time.Hour).Issue("u2")
		require.NoError(t, err)
		// Splice u2's payload onto u1's signature.
		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		require.Len(t, parts, 3)
		require.Len(t, forgedParts, 3)
		_, err = tokens.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		expired, err := tokens.WithClock(func() time.Time { return past }).Issue("u1")
		require.NoError(t, err)
		_, err = tokens.Verify(expired)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1"})
		s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Verify(s)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()})
		s, err := raw.SignedString([]byte("right-secret"))
		require.NoError(t, err)
		_, err = tokens.Verify(s)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})
}

func TestTokenService_IssueRequiresUserID(t *testing.T) {
	_, err := services.NewTokenService("secret", time.Hour).Issue("")
	assert.ErrorIs(t, err, services.ErrValidation)
}
