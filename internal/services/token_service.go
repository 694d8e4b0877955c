package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenClaims is the payload of an access token: the user id plus issue and
// optional expiry times.
type TokenClaims struct {
	UserID string `json:"id"`
	jwt.StandardClaims
}

// TokenService issues and verifies HS256-signed bearer tokens. It is
// stateless; the secret is injected at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration // zero means tokens never expire
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret. A zero ttl
// disables the exp claim.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token for userID. Identical inputs at the same instant yield
// identical tokens.
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrValidation)
	}
	now := s.now()
	claims := TokenClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = now.Add(s.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature, the algorithm and the expiry of tokenString
// and returns the user id it carries. Every failure wraps ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &TokenClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	// StandardClaims.Valid uses the wall clock; expiry is rechecked against
	// the injected clock so a fixed clock behaves consistently.
	if claims.ExpiresAt != 0 && s.now().Unix() > claims.ExpiresAt {
		return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: token has no user id", ErrInvalidToken)
	}
	return claims.UserID, nil
}
