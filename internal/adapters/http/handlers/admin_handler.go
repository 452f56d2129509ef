package handlers

import (
	"errors"

	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the admin console: roles, settings and the audit trail
type AdminHandler struct {
	roleService     *services.RoleService
	auditService    *services.AuditService
	settingsService *services.SettingsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roleService *services.RoleService, auditService *services.AuditService, settingsService *services.SettingsService) *AdminHandler {
	return &AdminHandler{
		roleService:     roleService,
		auditService:    auditService,
		settingsService: settingsService,
	}
}

// ReplacePermissionsRequest represents a permission set replacement body
type ReplacePermissionsRequest struct {
	Keys []string `json:"keys"`
}

// SetSettingRequest represents a setting update body
type SetSettingRequest struct {
	Value string `json:"value"`
}

// ListRoles lists the role hierarchy
// @Summary List roles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/roles [get]
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.roleService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list roles")
	}

	return response.Success(c, "Roles retrieved successfully", fiber.Map{"roles": roles})
}

// ReplacePermissions swaps a role's permission set
// @Summary Replace role permissions
// @Description Replaces the whole permission set atomically
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Role name"
// @Param body body ReplacePermissionsRequest true "Permission keys"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/roles/{name}/permissions [put]
func (h *AdminHandler) ReplacePermissions(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)
	name := c.Params("name")

	var req ReplacePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	role, err := h.roleService.ReplacePermissions(c.Context(), actorID, name, req.Keys, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			return response.NotFound(c, "Role not found")
		}
		return response.InternalServerError(c, "Failed to replace permissions")
	}

	return response.Success(c, "Permissions replaced successfully", fiber.Map{"role": role})
}

// ListAudit lists the audit trail
// @Summary List audit log
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /admin/audit [get]
func (h *AdminHandler) ListAudit(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	entries, total, err := h.auditService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list audit log")
	}

	return response.Success(c, "Audit log retrieved successfully", pagination.NewResponse(entries, params, total))
}

// GetSetting reads one setting
// @Summary Get setting
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Success 200 {object} response.Response
// @Router /admin/settings/{key} [get]
func (h *AdminHandler) GetSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	value, err := h.settingsService.Get(c.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrSettingKeyRequired) {
			return response.BadRequest(c, "Setting key is required")
		}
		return response.InternalServerError(c, "Failed to get setting")
	}

	return response.Success(c, "Setting retrieved successfully", fiber.Map{
		"key":   key,
		"value": value,
	})
}

// SetSetting upserts one setting
// @Summary Set setting
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param body body SetSettingRequest true "Setting value"
// @Success 200 {object} response.Response
// @Router /admin/settings/{key} [put]
func (h *AdminHandler) SetSetting(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)
	key := c.Params("key")

	var req SetSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.settingsService.Set(c.Context(), actorID, key, req.Value, c.IP()); err != nil {
		if errors.Is(err, services.ErrSettingKeyRequired) {
			return response.BadRequest(c, "Setting key is required")
		}
		return response.InternalServerError(c, "Failed to set setting")
	}

	return response.Success(c, "Setting updated successfully", nil)
}
