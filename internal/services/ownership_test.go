package services_test

import (
	"testing"

	"bloglist/internal/models"
	"bloglist/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestOwnershipPolicy(t *testing.T) {
	blog := &models.Blog{ID: "b1", OwnerID: "owner"}

	owner := services.Identity{UserID: "owner"}
	stranger := services.Identity{UserID: "stranger"}

	assert.True(t, services.CanDelete(owner, blog))
	assert.False(t, services.CanDelete(stranger, blog))
	assert.False(t, services.CanDelete(services.Identity{}, blog))
	assert.False(t, services.CanDelete(owner, nil))

	assert.NoError(t, services.AuthorizeDelete(owner, blog))

	err := services.AuthorizeDelete(stranger, blog)
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.NotErrorIs(t, err, services.ErrUnauthorized)

	err = services.AuthorizeDelete(services.Identity{}, blog)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.NotErrorIs(t, err, services.ErrForbidden)
}
