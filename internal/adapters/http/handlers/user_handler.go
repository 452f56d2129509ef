package handlers

import (
	"errors"
	"strconv"
	"time"

	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user profile and account management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest represents profile update request body
type UpdateProfileRequest struct {
	Email         *string `json:"email"`
	MinecraftName *string `json:"minecraft_name"`
	Password      *string `json:"password"`
}

// SetRoleRequest represents role change request body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// BanRequest represents ban request body
type BanRequest struct {
	Until *time.Time `json:"until"` // nil means permanent
}

// PermissionRequest represents a per-user grant request body
type PermissionRequest struct {
	Key string `json:"key"`
}

// paramID parses a :id route parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}

// UpdateProfile updates the caller's own profile
// @Summary Update own profile
// @Description Update email, minecraft name or password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateProfileInput{
		Email:         req.Email,
		MinecraftName: req.MinecraftName,
		Password:      req.Password,
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already in use")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password does not meet requirements")
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{"user": user})
}

// List lists users for staff
// @Summary List users
// @Description List users with optional username/email search
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	search := c.Query("search")

	users, total, err := h.userService.List(c.Context(), search, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(users, params, total))
}

// GetByID returns one user
// @Summary Get user
// @Description Get a user's public profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetProfile(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{"user": user})
}

// SetRole changes a user's role
// @Summary Change user role
// @Description Move a user to another role in the hierarchy
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetRole(c.Context(), actorID, id, req.Role, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Unknown role name")
		case errors.Is(err, services.ErrCannotDemoteSelf):
			return response.BadRequest(c, "Cannot change own role")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to change role")
		}
	}

	return response.Success(c, "Role changed successfully", fiber.Map{"user": user})
}

// Ban bans a user
// @Summary Ban user
// @Description Ban a user until a date, or permanently when no date given
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body BanRequest true "Ban window"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id}/ban [post]
func (h *UserHandler) Ban(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req BanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Ban(c.Context(), actorID, id, req.Until, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCannotBanSelf):
			return response.BadRequest(c, "Cannot ban own account")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to ban user")
		}
	}

	return response.Success(c, "User banned successfully", fiber.Map{"user": user})
}

// Unban lifts a user's ban
// @Summary Unban user
// @Description Lift a user's ban
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/ban [delete]
func (h *UserHandler) Unban(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.Unban(c.Context(), actorID, id, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to unban user")
	}

	return response.Success(c, "User unbanned successfully", fiber.Map{"user": user})
}

// Delete deletes a user account
// @Summary Delete user
// @Description Soft delete a user account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(c.Context(), actorID, id, c.IP()); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// GrantPermission adds an explicit permission grant to a user
// @Summary Grant permission
// @Description Add an explicit permission key to a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body PermissionRequest true "Permission key"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id}/permissions [post]
func (h *UserHandler) GrantPermission(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Key == "" {
		return response.BadRequest(c, "Permission key is required")
	}

	if err := h.userService.GrantPermission(c.Context(), actorID, id, req.Key, c.IP()); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to grant permission")
	}

	return response.Success(c, "Permission granted successfully", nil)
}

// RevokePermission removes an explicit permission grant from a user
// @Summary Revoke permission
// @Description Remove an explicit permission key from a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body PermissionRequest true "Permission key"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id}/permissions [delete]
func (h *UserHandler) RevokePermission(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Key == "" {
		return response.BadRequest(c, "Permission key is required")
	}

	if err := h.userService.RevokePermission(c.Context(), actorID, id, req.Key, c.IP()); err != nil {
		return response.InternalServerError(c, "Failed to revoke permission")
	}

	return response.Success(c, "Permission revoked successfully", nil)
}
