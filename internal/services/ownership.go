package services

import (
	"fmt"

	"bloglist/internal/models"
)

// CanDelete reports whether identity owns blog.
func CanDelete(identity Identity, blog *models.Blog) bool {
	return !identity.IsZero() && blog != nil && identity.UserID == blog.OwnerID
}

// AuthorizeDelete returns ErrUnauthorized when no identity was established
// and ErrForbidden when the identity does not own blog.
func AuthorizeDelete(identity Identity, blog *models.Blog) error {
	if identity.IsZero() {
		return ErrUnauthorized
	}
	if !CanDelete(identity, blog) {
		return fmt.Errorf("%w: only the owner may delete this blog", ErrForbidden)
	}
	return nil
}
