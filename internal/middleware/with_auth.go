package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openlearn/lms-go-api/internal/utils"
)

// Auth role constants used by the WithAuth helper. AuthRoleStaff admits
// both admins and teachers; AuthRoleAdmin admits admins only.
const (
	AuthRoleAny   = "any"
	AuthRoleAdmin = "admin"
	AuthRoleStaff = "staff"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with authentication/authorization guards on top
// of the user_id/user_role locals set by JWTProtected.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser
	if !requireUser && role != AuthRoleAny {
		requireUser = true
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role == AuthRoleAny {
			return handler(c)
		}

		currentRole := roleValue(c.Locals("user_role"))
		switch role {
		case AuthRoleAdmin:
			if currentRole != "admin" {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		case AuthRoleStaff:
			if currentRole != "admin" && currentRole != "teacher" {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		default:
			if currentRole != role {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		}

		return handler(c)
	}
}

func roleValue(value interface{}) string {
	if role, ok := value.(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}
