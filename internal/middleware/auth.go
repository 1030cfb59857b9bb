package middleware

import (
	"context"
	"strings"

	"snapshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenResolver validates a bearer token and returns the account and session it names.
type TokenResolver func(ctx context.Context, token string) (accountID uint, sessionID string, err error)

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success it stores "userID" (uint) and "sessionID" (string) in locals.
func AuthRequired(resolve TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		accountID, sessionID, err := resolve(c.UserContext(), parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", accountID)
		c.Locals("sessionID", sessionID)
		c.SetUserContext(WithUserID(c.UserContext(), accountID))

		return c.Next()
	}
}
