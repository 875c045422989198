package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hackmart/storefront/internal/auth"
	"github.com/hackmart/storefront/internal/model"
)

// Locals keys set by the auth middleware.
const (
	localUserID = "userID"
	localEmail  = "email"
	localRole   = "role"
)

// TokenValidator validates access tokens. Implemented by auth.TokenProvider.
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// bearerToken extracts the access token from the auth cookies or the
// Authorization header, in that order.
func bearerToken(c *fiber.Ctx) string {
	if tok := c.Cookies("accessToken"); tok != "" {
		return tok
	}
	if tok := c.Cookies("auth_token"); tok != "" {
		return tok
	}
	header := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// AuthRequired rejects requests without a valid access token and stashes the
// caller's identity in the request locals.
func AuthRequired(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "missing access token",
			})
		}

		claims, err := tokens.Validate(tok)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "invalid or expired access token",
			})
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localEmail, claims.Email)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// SuperAdminOnly allows only super-admin callers past. Must run after
// AuthRequired.
func SuperAdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(localRole).(string); role != model.RoleSuperAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false, "message": "admin access required",
			})
		}
		return c.Next()
	}
}

// currentUserID returns the authenticated caller's id from the locals.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
