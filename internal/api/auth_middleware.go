package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/entrybase-dev/entrybase/internal/auth"
	"github.com/entrybase-dev/entrybase/internal/entries"
)

// identityKey is the fiber.Ctx locals key the authenticated identity is
// stored under.
const identityKey = "identity"

// OptionalAuth validates a bearer token when one is present and stores the
// resulting identity in the request context. Requests without a token pass
// through unauthenticated; queries that need an identity (editable=true)
// then resolve to an empty result rather than an error.
func OptionalAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Next()
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header must use the Bearer scheme",
			})
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(identityKey, auth.NewIdentity(claims))
		return c.Next()
	}
}

// currentIdentity returns the authenticated identity, or nil.
func currentIdentity(c *fiber.Ctx) entries.Identity {
	if ident, ok := c.Locals(identityKey).(*auth.TokenIdentity); ok {
		return ident
	}
	return nil
}
