package middleware

import (
	"net/http/httptest"
	"testing"

	"ember-portal/internal/core/authz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subjectAs injects a resolved subject the way AuthMiddleware would
func subjectAs(role string) fiber.Handler {
	rank, _ := authz.RankOf(role)
	sub := authz.Subject{
		UserID:          1,
		Role:            role,
		Rank:            rank,
		RolePermissions: map[string]bool{},
		Grants:          map[string]bool{},
	}
	return func(c *fiber.Ctx) error {
		c.Locals("userID", sub.UserID)
		c.Locals(subjectKey, sub)
		return c.Next()
	}
}

func guardStatus(t *testing.T, role string, guard fiber.Handler) int {
	t.Helper()

	app := fiber.New()
	app.Post("/guarded", subjectAs(role), guard, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode
}

func TestRequireRoleRefusesLowerRanks(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		guard    fiber.Handler
		expected int
	}{
		{"member refused by staff guard", authz.RoleMember, StaffOnly(), fiber.StatusForbidden},
		{"helper passes staff guard", authz.RoleHelper, StaffOnly(), fiber.StatusOK},
		{"helper refused by moderator guard", authz.RoleHelper, RequireRole(authz.RoleModerator), fiber.StatusForbidden},
		{"moderator passes moderator guard", authz.RoleModerator, RequireRole(authz.RoleModerator), fiber.StatusOK},
		{"moderator refused by admin guard", authz.RoleModerator, AdminOnly(), fiber.StatusForbidden},
		{"admin refused by owner guard", authz.RoleAdmin, OwnerOnly(), fiber.StatusForbidden},
		{"owner passes owner guard", authz.RoleOwner, OwnerOnly(), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, guardStatus(t, tt.role, tt.guard))
		})
	}
}

func TestRequireWithoutSubjectIsUnauthorized(t *testing.T) {
	app := fiber.New()
	app.Get("/guarded", StaffOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
