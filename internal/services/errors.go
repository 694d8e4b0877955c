package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers translate these into HTTP status codes; every
// 401-class error wraps ErrUnauthorized.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrMissingToken       = fmt.Errorf("%w: token missing", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: token invalid", ErrUnauthorized)
	ErrUnknownUser        = fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
)
