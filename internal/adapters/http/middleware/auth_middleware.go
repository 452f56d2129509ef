package middleware

import (
	"errors"
	"strings"

	"ember-portal/internal/config"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/jwt"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const subjectKey = "subject"

// AuthMiddleware validates the access token and resolves the caller's
// authorization subject (rank, role permissions, explicit grants) from the
// store. Banned and deactivated accounts are rejected here so a stale
// token cannot outlive a ban.
func AuthMiddleware(cfg *config.Config, userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Resolve the subject from the store
		sub, err := userService.ResolveSubject(c.Context(), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				return response.Unauthorized(c, "Account no longer exists")
			case errors.Is(err, services.ErrUserInactive):
				return response.Forbidden(c, "Account is deactivated")
			case errors.Is(err, services.ErrUserBanned):
				return response.Forbidden(c, "Account is banned")
			default:
				return response.InternalServerError(c, "Failed to resolve account")
			}
		}

		// 6. Set user info in context
		c.Locals("userID", sub.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", sub.Role)
		c.Locals(subjectKey, sub)

		return c.Next()
	}
}

// Subject returns the resolved subject set by AuthMiddleware
func Subject(c *fiber.Ctx) (authz.Subject, bool) {
	sub, ok := c.Locals(subjectKey).(authz.Subject)
	return sub, ok
}

// Require guards a route with an authorization requirement. Must run
// after AuthMiddleware.
func Require(req authz.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, ok := Subject(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if err := authz.Authorize(sub, req); err != nil {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// RequireRole guards a route with a minimum role rank
func RequireRole(name string) fiber.Handler {
	return Require(authz.MinRole(name))
}

// RequirePermission guards a route with a permission key
func RequirePermission(key string) fiber.Handler {
	return Require(authz.Permission(key))
}

// StaffOnly allows helpers and above
func StaffOnly() fiber.Handler {
	return RequireRole(authz.RoleHelper)
}

// AdminOnly allows admins and above
func AdminOnly() fiber.Handler {
	return RequireRole(authz.RoleAdmin)
}

// OwnerOnly allows only the top rank
func OwnerOnly() fiber.Handler {
	return RequireRole(authz.RoleOwner)
}
