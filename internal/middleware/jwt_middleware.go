package middleware

import (
	"bloglist/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// AuthRequired is a Fiber middleware that resolves the bearer token in the
// Authorization header to an identity. Failures are passed to the error
// handler, which answers 401.
func AuthRequired(guard *services.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := guard.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		// Store the caller in the Fiber context for subsequent handlers
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired, or the zero
// identity on public routes.
func IdentityFrom(c *fiber.Ctx) services.Identity {
	identity, _ := c.Locals(identityKey).(services.Identity)
	return identity
}
